package mpp

import "testing"

// The version-compare tuple suite carried over from the original
// comparator's tests — the RPM version-comparison examples from the
// Fedora wiki, the RPM test suite's own cases, and assorted
// distribution version strings (git/bzr suffixes, rc/beta tags) —
// extended with operator-consistency tuples derived from that corpus.
func TestVersionCompare(t *testing.T) {
	tests := []struct {
		v1 string
		op Operator
		v2 string
	}{
		// examples from https://fedoraproject.org/wiki/Archive:Tools/RPM/VersionComparison
		{"1.0010", OpGT, "1.9"},
		{"1.05", OpEQ, "1.5"},
		{"1.0", OpGT, "1"},
		{"2.50", OpGT, "2.5"},
		{"fc4", OpEQ, "fc.4"},
		{"FC5", OpLT, "fc4"},
		{"2a", OpLT, "2.0"},
		{"1.0", OpGT, "1.fc4"},
		{"3.0.0_fc", OpEQ, "3.0.0.fc"},
		// from RPM tests
		{"1.0", OpEQ, "1.0"},
		{"1.0", OpLT, "2.0"},
		{"2.0", OpGT, "1.0"},
		{"2.0.1", OpEQ, "2.0.1"},
		{"2.0", OpLT, "2.0.1"},
		{"2.0.1", OpGT, "2.0"},
		{"2.0.1a", OpEQ, "2.0.1a"},
		{"2.0.1a", OpGT, "2.0.1"},
		{"2.0.1", OpLT, "2.0.1a"},
		{"5.5p1", OpEQ, "5.5p1"},
		{"5.5p1", OpLT, "5.5p2"},
		{"5.5p2", OpGT, "5.5p1"},
		{"5.5p10", OpEQ, "5.5p10"},
		{"5.5p1", OpLT, "5.5p10"},
		{"5.5p10", OpGT, "5.5p1"},
		{"10xyz", OpLT, "10.1xyz"},
		{"10.1xyz", OpGT, "10xyz"},
		{"xyz10", OpEQ, "xyz10"},
		{"xyz10", OpLT, "xyz10.1"},
		{"xyz10.1", OpGT, "xyz10"},
		{"xyz.4", OpEQ, "xyz.4"},
		{"xyz.4", OpLT, "8"},
		{"8", OpGT, "xyz.4"},
		{"xyz.4", OpLT, "2"},
		{"2", OpGT, "xyz.4"},
		{"5.5p2", OpLT, "5.6p1"},
		{"5.6p1", OpGT, "5.5p2"},
		{"5.6p1", OpLT, "6.5p1"},
		{"6.5p1", OpGT, "5.6p1"},
		{"6.0.rc1", OpGT, "6.0"},
		{"6.0", OpLT, "6.0.rc1"},
		{"10b2", OpGT, "10a1"},
		{"10a2", OpLT, "10b2"},
		{"1.0aa", OpEQ, "1.0aa"},
		{"1.0a", OpLT, "1.0aa"},
		{"1.0aa", OpGT, "1.0a"},
		{"10.0001", OpEQ, "10.0001"},
		{"10.0001", OpEQ, "10.1"},
		{"10.1", OpEQ, "10.0001"},
		{"10.0001", OpLT, "10.0039"},
		{"10.0039", OpGT, "10.0001"},
		{"4.999.9", OpLT, "5.0"},
		{"5.0", OpGT, "4.999.9"},
		{"20101121", OpEQ, "20101121"},
		{"20101121", OpLT, "20101122"},
		{"20101122", OpGT, "20101121"},
		{"2_0", OpEQ, "2_0"},
		{"2.0", OpEQ, "2_0"},
		{"2_0", OpEQ, "2.0"},
		{"a", OpEQ, "a"},
		{"a+", OpEQ, "a+"},
		{"a+", OpEQ, "a_"},
		{"a_", OpEQ, "a+"},
		{"+a", OpEQ, "+a"},
		{"+a", OpEQ, "_a"},
		{"_a", OpEQ, "+a"},
		{"+_", OpEQ, "+_"},
		{"_+", OpEQ, "+_"},
		{"_+", OpEQ, "_+"},
		{"+", OpEQ, "_"},
		{"_", OpEQ, "+"},
		// other tests
		{"0.99.beta19", OpGT, "0.99.beta14"},
		{"1.0.0", OpLT, "2.0.0"},
		{".0.0", OpLT, "2.0.0"},
		{"alpha", OpLT, "beta"},
		{"1.0", OpLT, "1.0.0"},
		{"2.456", OpLT, "2.1000"},
		{"2.1000", OpLT, "3.111"},
		{"2.001", OpEQ, "2.1"},
		{"2.34", OpEQ, "2.34"},
		{"6.1.2", OpLT, "6.3.8"},
		{"1.7.3.0", OpLT, "2.0.0"},
		{"2.24.51", OpLT, "2.25"},
		{"2.1.5+20120813+gitdcbe778", OpGT, "2.1.5"},
		{"3.4.1", OpGT, "3.4b1"},
		{"041206", OpLT, "200090325"},
		{"0.6.2+git20130413", OpGT, "0.6.2"},
		{"2.6.0+bzr6602", OpGT, "2.6.0"},
		{"2.6.0", OpGT, "2.6b2"},
		{"2.6.0+bzr6602", OpGT, "2.6b2x"},
		{"0.6.7+20150214+git3a710f9", OpGT, "0.6.7"},
		{"15.8b", OpLT, "15.8.0.1"},
		{"1.2rc1", OpLT, "1.2.0"},
		// operator consistency over the corpus above: every == also
		// satisfies >= and <=, every strict comparison satisfies its
		// non-strict form and !=.
		{"1.05", OpGE, "1.5"},
		{"1.05", OpLE, "1.5"},
		{"fc4", OpGE, "fc.4"},
		{"fc4", OpLE, "fc.4"},
		{"3.0.0_fc", OpGE, "3.0.0.fc"},
		{"3.0.0_fc", OpLE, "3.0.0.fc"},
		{"10.0001", OpGE, "10.1"},
		{"10.0001", OpLE, "10.1"},
		{"2.001", OpGE, "2.1"},
		{"2.001", OpLE, "2.1"},
		{"2.0", OpGE, "2_0"},
		{"2.0", OpLE, "2_0"},
		{"a+", OpGE, "a_"},
		{"a+", OpLE, "a_"},
		{"1.0010", OpGE, "1.9"},
		{"1.0010", OpNE, "1.9"},
		{"1.0", OpGE, "1"},
		{"1.0", OpNE, "1"},
		{"2.50", OpGE, "2.5"},
		{"2.50", OpNE, "2.5"},
		{"6.0.rc1", OpGE, "6.0"},
		{"6.0.rc1", OpNE, "6.0"},
		{"10b2", OpGE, "10a1"},
		{"10b2", OpNE, "10a1"},
		{"3.4.1", OpGE, "3.4b1"},
		{"3.4.1", OpNE, "3.4b1"},
		{"2.6.0+bzr6602", OpGE, "2.6.0"},
		{"2.6.0+bzr6602", OpNE, "2.6.0"},
		{"5.0", OpGE, "4.999.9"},
		{"5.0", OpNE, "4.999.9"},
		{"2a", OpLE, "2.0"},
		{"2a", OpNE, "2.0"},
		{"FC5", OpLE, "fc4"},
		{"FC5", OpNE, "fc4"},
		{"xyz.4", OpLE, "8"},
		{"xyz.4", OpNE, "8"},
		{"15.8b", OpLE, "15.8.0.1"},
		{"15.8b", OpNE, "15.8.0.1"},
		{"1.2rc1", OpLE, "1.2.0"},
		{"1.2rc1", OpNE, "1.2.0"},
		{"alpha", OpLE, "beta"},
		{"alpha", OpNE, "beta"},
		{"041206", OpLE, "200090325"},
		{"041206", OpNE, "200090325"},
	}

	for _, tc := range tests {
		if !VersionCompare(tc.v1, tc.op, tc.v2) {
			t.Errorf("VersionCompare(%q, %s, %q) = false, want true", tc.v1, tc.op, tc.v2)
		}
	}
}

func TestVersionCompareString(t *testing.T) {
	for op, want := range map[Operator]string{
		OpLT: "<", OpLE: "<=", OpEQ: "==", OpNE: "!=", OpGE: ">=", OpGT: ">",
	} {
		if got := op.String(); got != want {
			t.Errorf("Operator(%d).String() = %q, want %q", op, got, want)
		}
	}
}
