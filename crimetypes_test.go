package safemap

import (
	"testing"

	. "gopkg.in/check.v1"
)

func TestCanonicalize(t *testing.T) {
	c := DefaultCanonicalizer()
	tests := []struct {
		raw    string
		key    string
		bucket string
	}{
		{"VEHICLE OFFENCES", "vehicle", "vehicle"},
		{"VEHICLEOFFENCES", "vehicle", "vehicle"},
		{"Vehicle Offences", "vehicle", "vehicle"},
		{"GRAND LARCENY OF MOTOR VEHICLE", "vehicle", "vehicle"},
		{"GRAND LARCENY", "theft", "theft"},
		{"THEFT", "theft", "theft"},
		{"VIOLENCE AGAINST THE PERSON", "violence", "violence"},
		{"FELONY ASSAULT", "violence", "violence"},
		{"HARRASSMENT 2", "violence", "violence"},
		{"SEX CRIMES", "sexual", "sexual"},
		{"Violence and sexual offences", "violence", "violence"},
		{"VIOLENCE AND SEXUAL OFFENCES", "violence", "violence"},
		{"SEXUAL OFFENCES", "sexual", "sexual"},
		{"DANGEROUS WEAPONS", "weapons", "weapons"},
		{"POSSESSION OF WEAPONS", "weapons", "weapons"},
		{"DANGEROUS DRUGS", "drugs", "drugs"},
		{"ARSON AND CRIMINAL DAMAGE", "damage", "damage"},
		{"CRIMINAL MISCHIEF & RELATED OF", "damage", "damage"},
		{"PUBLIC ORDER OFFENCES", "public-order", "public-order"},
		{"OFF. AGNST PUB ORD SENSBLTY &", "public-order", "public-order"},
		{"Dog Fouling", "other:dogfouling", OtherBucket},
		{"DOG  FOULING", "other:dogfouling", OtherBucket},
		{"", OtherBucket, OtherBucket},
		{" -- ", OtherBucket, OtherBucket},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := c.Canonicalize(tt.raw)
			if got.Key != tt.key || got.Bucket != tt.bucket {
				t.Errorf("Canonicalize(%q) = %+v, want key %q bucket %q", tt.raw, got, tt.key, tt.bucket)
			}
		})
	}
}

type CanonicalizerSuite struct{}

var _ = Suite(&CanonicalizerSuite{})

func (s *CanonicalizerSuite) TestUnknownLabelsKeepTheirIdentity(c *C) {
	ct := DefaultCanonicalizer().Canonicalize("  anti-social   BEHAVIOUR ")
	c.Assert(ct.Label, Equals, "Anti-social Behaviour")
	c.Assert(ct.Slot, Equals, otherSlot)
}

func (s *CanonicalizerSuite) TestRuleOrderDecides(c *C) {
	cz := NewCanonicalizer([]CrimeTypeRule{
		{Key: "a", Label: "A", Keywords: []string{"car theft"}, Slot: 2},
		{Key: "b", Label: "B", Keywords: []string{"THEFT"}, Slot: 3},
	})
	c.Assert(cz.Canonicalize("CAR THEFT").Key, Equals, "a")
	c.Assert(cz.Canonicalize("BIKE THEFT").Key, Equals, "b")
}

func (s *CanonicalizerSuite) TestBadSlotFallsBackToOther(c *C) {
	cz := NewCanonicalizer([]CrimeTypeRule{{Key: "x", Label: "X", Keywords: []string{"X"}, Slot: 42}})
	c.Assert(cz.Canonicalize("x").Slot, Equals, otherSlot)
}

func (s *CanonicalizerSuite) TestDefaultSlotsFitPalette(c *C) {
	for _, r := range DefaultCrimeTypeRules {
		c.Assert(r.Slot >= 0 && r.Slot < len(StandardPalette), Equals, true, Commentf("rule %s", r.Key))
	}
}
