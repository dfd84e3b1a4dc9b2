package descriptor

import (
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/version"
)

// ParseRequires parses a requires constraint such as ">= 0.3, < 1".
func ParseRequires(requires string) (*semver.Constraints, error) {
	c, err := semver.NewConstraint(requires)
	if err != nil {
		return nil, errors.MarkAsf(err, errors.InvalidDescriptor, "invalid requires constraint %q", requires)
	}
	return c, nil
}

// CheckRequires verifies the running callgen satisfies the descriptor's
// requires constraint. Development builds satisfy every constraint.
func (d *InterfaceDescriptor) CheckRequires(info version.Info) error {
	if d.Requires == "" || info.IsDev() {
		return nil
	}
	constraint, err := ParseRequires(d.Requires)
	if err != nil {
		return err
	}
	v, err := info.Semver()
	if err != nil {
		return errors.Wrapf(err, "invalid callgen version %s", info.Version)
	}
	if !constraint.Check(v) {
		return errors.WithHint(
			errors.Newf("%s requires callgen %s, but running %s", d.Name, d.Requires, info.Version),
			"upgrade callgen or relax the descriptor's requires field")
	}
	return nil
}
