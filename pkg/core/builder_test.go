package core_test

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource records how many times it was converted.
type countingSource struct {
	calls  int
	result core.IsConstraint
	err    error
}

func (s *countingSource) ToIsConstraint() (core.IsConstraint, error) {
	s.calls++
	return s.result, s.err
}

func TestIs(t *testing.T) {
	x := core.NewUnboundVariable("x")

	got, err := core.Is(x, v("y"))
	require.NoError(t, err)
	assert.Equal(t, "$x is $y", got.String())

	got, err = core.Is(got, core.VariableName("$z"))
	require.NoError(t, err)
	assert.Equal(t, "$x is $y, is $z", got.String())
}

func TestIsDoesNotModifyReceiver(t *testing.T) {
	base, err := core.Is(core.NewUnboundVariable("x"), v("y"))
	require.NoError(t, err)

	a, err := core.Is(base, v("a"))
	require.NoError(t, err)
	b, err := core.Is(base, v("b"))
	require.NoError(t, err)

	assert.Equal(t, "$x is $y", base.String())
	assert.Equal(t, "$x is $y, is $a", a.String())
	assert.Equal(t, "$x is $y, is $b", b.String())
}

func TestIsSources(t *testing.T) {
	tests := []struct {
		name string
		src  core.IsSource
		want string
	}{
		{"variable", v("y"), "$x is $y"},
		{"unbound variable", core.NewUnboundVariable("y"), "$x is $y"},
		{"constraint", core.NewIsConstraint(v("y")), "$x is $y"},
		{"name with dollar", core.VariableName("$y"), "$x is $y"},
		{"name without dollar", core.VariableName("y_2-b"), "$x is $y_2-b"},
		{"anonymous", core.AnonymousVariable(), "$x is $_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.Is(core.NewUnboundVariable("x"), tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestVariableNameInvalid(t *testing.T) {
	for _, name := range []string{"", "$", "1abc", "$a b", "a.b", "$$a"} {
		t.Run(name, func(t *testing.T) {
			_, err := core.VariableName(name).ToIsConstraint()
			var buildErr *core.BuildError
			require.ErrorAs(t, err, &buildErr)
			assert.Contains(t, buildErr.Error(), "invalid variable name")
		})
	}
}

func TestChainShortCircuits(t *testing.T) {
	failure := &core.BuildError{Message: "first step failed"}
	first := &countingSource{err: failure}
	second := &countingSource{result: core.NewIsConstraint(v("z"))}

	got, err := core.Then(core.Is(core.NewUnboundVariable("x"), first)).Is(second).Result()

	assert.Nil(t, got)
	assert.Same(t, failure, err, "the first failure is returned unwrapped")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "later sources are never converted")
}

func TestChainFirstErrorWins(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	a := &countingSource{err: errA}
	b := &countingSource{err: errB}
	c := &countingSource{result: core.NewIsConstraint(v("c"))}

	_, err := core.Start(core.NewUnboundVariable("x")).Is(a).Is(b).Is(c).Result()

	assert.Same(t, errA, err)
	assert.Equal(t, []int{1, 0, 0}, []int{a.calls, b.calls, c.calls})
}

func TestChainSuccess(t *testing.T) {
	src := &countingSource{result: core.NewIsConstraint(v("z"))}

	got, err := core.Start(core.NewUnboundVariable("x")).
		Is(v("y")).
		Is(src).
		Is(core.VariableName("w")).
		Result()

	require.NoError(t, err)
	assert.Equal(t, "$x is $y, is $z, is $w", got.String())
	assert.Equal(t, 1, src.calls)
}

func TestChainWithoutConstraint(t *testing.T) {
	_, err := core.Start(core.NewUnboundVariable("x")).Result()
	var buildErr *core.BuildError
	require.ErrorAs(t, err, &buildErr)

	_, err = core.Start(nil).Is(v("y")).Result()
	require.ErrorAs(t, err, &buildErr)

	var missing *core.ConceptVariable
	_, err = core.Start(missing).Is(v("y")).Result()
	require.ErrorAs(t, err, &buildErr)
}

func TestConceptVariableEqual(t *testing.T) {
	a, err := core.Start(core.NewUnboundVariable("x")).Is(v("y")).Is(v("z")).Result()
	require.NoError(t, err)
	b, err := core.Start(core.NewUnboundVariable("x")).Is(core.VariableName("y")).Is(core.VariableName("z")).Result()
	require.NoError(t, err)
	c, err := core.Start(core.NewUnboundVariable("x")).Is(v("z")).Is(v("y")).Result()
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "constraint order matters")
	assert.False(t, a.Equal(nil))
}

func TestIsConstraintString(t *testing.T) {
	assert.Equal(t, "is $y", core.NewIsConstraint(v("y")).String())
}

func TestIsNilOperands(t *testing.T) {
	var unbound *core.UnboundVariable
	var concept *core.ConceptVariable

	tests := []struct {
		name     string
		acceptor core.ConstraintAcceptor
		src      core.IsSource
	}{
		{"nil unbound acceptor", unbound, v("y")},
		{"nil concept acceptor", concept, v("y")},
		{"nil interface acceptor", nil, v("y")},
		{"nil unbound source", core.NewUnboundVariable("x"), unbound},
		{"nil interface source", core.NewUnboundVariable("x"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *core.ConceptVariable
			var err error
			require.NotPanics(t, func() { got, err = core.Is(tt.acceptor, tt.src) })
			assert.Nil(t, got)
			var buildErr *core.BuildError
			require.ErrorAs(t, err, &buildErr)
		})
	}

	_, err := core.Start(core.NewUnboundVariable("x")).Is(unbound).Result()
	var buildErr *core.BuildError
	require.ErrorAs(t, err, &buildErr)
}
