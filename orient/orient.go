// Package orient implements crystal symmetry operations on orientations:
// symmetry groups, disorientation, fundamental zone reduction and the
// binning of orientation space used by orientation distribution functions.
//
// Orientations are unit quaternions (gonum quat.Number) that rotate
// crystal axes onto sample axes. Crystal symmetry therefore acts on the
// right: q and q*s describe the same orientation for every s in the group.
package orient

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/num/quat"
)

// Quat is a quaternion with Real as its scalar part.
type Quat = quat.Number

// Class is a crystal symmetry class.
type Class int

const (
	Cubic Class = iota
	Hexagonal
	// Orthorhombic is recognized but has no symmetry tables.
	Orthorhombic
	Unknown
)

func (c Class) String() string {
	switch c {
	case Cubic:
		return "cubic"
	case Hexagonal:
		return "hexagonal"
	case Orthorhombic:
		return "orthorhombic"
	}
	return "unknown"
}

// ParseClass parses the lower case class names returned by Class.String.
func ParseClass(s string) (Class, error) {
	for c := Cubic; c < Unknown; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return Unknown, fmt.Errorf("unknown crystal class %q", s)
}

// ErrUnsupportedClass is returned when a crystal class has no symmetry tables.
var ErrUnsupportedClass = errors.New("crystal class not supported")

// Lookup returns the symmetry group of class c.
func Lookup(c Class) (*Group, error) {
	switch c {
	case Cubic:
		return cubic, nil
	case Hexagonal:
		return hexagonal, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedClass, c)
}

// Must is like Lookup but panics on an unsupported class.
func Must(c Class) *Group {
	g, err := Lookup(c)
	if err != nil {
		panic(err)
	}
	return g
}

// Group is an immutable crystal symmetry group together with the
// constants its orientation-space binning needs.
type Group struct {
	class Class
	ops   []Quat
	// rodOps are the ops as Rodrigues vectors. Entries of 180° rotations
	// are infinite and stored by direction with inf set.
	rodOps []rodOp
	bins   binning
	// maxAngle is the largest possible disorientation in degrees.
	maxAngle float64

	tableOnce sync.Once
	tab       *binTable
}

type rodOp struct {
	v   [3]float64
	inf bool
}

// Class returns the crystal class of the group.
func (g *Group) Class() Class { return g.class }

// Len returns the number of symmetry operators.
func (g *Group) Len() int { return len(g.ops) }

// Op returns the i'th symmetry operator.
func (g *Group) Op(i int) Quat { return g.ops[i] }

// MaxAngle returns the fundamental-zone half-angle: the largest possible
// disorientation angle in degrees between two orientations of the class.
func (g *Group) MaxAngle() float64 { return g.maxAngle }
