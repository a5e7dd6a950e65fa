package step_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luxfi/ipa/internal/step"
)

type strSub string

func (s strSub) String() string { return string(s) }

func TestRoot(t *testing.T) {
	p := step.Root("query-1")
	assert.Equal(t, "query-1", p.String())
}

func TestNarrow(t *testing.T) {
	p := step.Root("query-1").Narrow(strSub("mod_conv")).Narrow(strSub("bit3"))
	assert.Equal(t, "query-1/mod_conv/bit3", p.String())
}

func TestNarrowString(t *testing.T) {
	p := step.Root("query-1").NarrowString("row-7")
	assert.Equal(t, "query-1/row-7", p.String())
}

func TestEqual_SameLineage(t *testing.T) {
	root := step.Root("query-1")
	a := root.Narrow(strSub("mod_conv")).Narrow(strSub("bit3"))
	b := root.Narrow(strSub("mod_conv")).Narrow(strSub("bit3"))
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
}

func TestEqual_DifferentSegments(t *testing.T) {
	root := step.Root("query-1")
	a := root.Narrow(strSub("mod_conv"))
	b := root.Narrow(strSub("sort"))
	assert.False(t, a.Equal(b))
}

func TestEqual_DifferentDepth(t *testing.T) {
	root := step.Root("query-1")
	a := root.Narrow(strSub("mod_conv"))
	b := root.Narrow(strSub("mod_conv")).Narrow(strSub("bit3"))
	assert.False(t, a.Equal(b))
}

func TestEqual_DifferentRoots(t *testing.T) {
	a := step.Root("query-1")
	b := step.Root("query-2")
	assert.False(t, a.Equal(b))
}

func TestEqual_SamePointer(t *testing.T) {
	p := step.Root("query-1").Narrow(strSub("mod_conv"))
	assert.True(t, p.Equal(p))
}
