package script

import _ "embed"

//go:embed selftest.yaml
var selfTestYAML []byte

// SelfTestPassed is printed by callers when SelfTest runs clean.
const SelfTestPassed = "All tests pass!"

// SelfTest returns the built-in graph construction scenario. It builds graph
// g over nodes A, B and C, arrows (A, B) and (B, B) and link X, checking
// every write with a read, then deletes A and X.
func SelfTest() *Script {
	s, err := Parse("selftest", selfTestYAML)
	if err != nil {
		panic(err)
	}
	return s
}
