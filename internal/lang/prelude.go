package lang

// PreludeFileName marks a standard-library root: a directory containing a
// file with this name is treated as a stdlib root.
const PreludeFileName = "prelude.mica"

// PreludeURL is the synthetic URL of the embedded prelude, used when no
// on-disk standard library is configured.
const PreludeURL = "mica:///std/prelude.mica"

// Prelude is the built-in standard library source. It declares the
// primitive types and a handful of core functions so that the server is
// useful with zero configuration.
const Prelude = `// Mica standard prelude.

type Int
type String
type Bool
type Unit

fun println(_ message: String) {
}

fun abs(_ n: Int) -> Int {
	if n < 0 {
		return 0 - n
	}
	return n
}

fun min(_ a: Int, _ b: Int) -> Int {
	if a < b {
		return a
	}
	return b
}

fun max(_ a: Int, _ b: Int) -> Int {
	if a < b {
		return b
	}
	return a
}
`
