// # internal/resolve/stdlib.go
package resolve

// Builtins never need an import and never get rewritten. Signedness and
// qualifiers are stripped by the sanitizer before lookup.
var Builtins = map[string]bool{
	"void":        true,
	"bool":        true,
	"bint":        true,
	"_Bool":       true,
	"char":        true,
	"wchar_t":     true,
	"short":       true,
	"int":         true,
	"long":        true,
	"long long":   true,
	"float":       true,
	"double":      true,
	"long double": true,
	"size_t":      true,
	"ssize_t":     true,
	"ptrdiff_t":   true,
}

// stdEntry maps a source spelling to its target-side module and symbol.
// NoImport entries are spelling corrections only.
type stdEntry struct {
	Module   string
	Symbol   string
	NoImport bool
}

// stdImports is the fixed standard-library equivalence table. Keys are
// the sanitized source spellings.
var stdImports = map[string]stdEntry{
	// C fixed-width and stdio/time scalars.
	"int8_t":    {Module: "libc.stdint", Symbol: "int8_t"},
	"int16_t":   {Module: "libc.stdint", Symbol: "int16_t"},
	"int32_t":   {Module: "libc.stdint", Symbol: "int32_t"},
	"int64_t":   {Module: "libc.stdint", Symbol: "int64_t"},
	"uint8_t":   {Module: "libc.stdint", Symbol: "uint8_t"},
	"uint16_t":  {Module: "libc.stdint", Symbol: "uint16_t"},
	"uint32_t":  {Module: "libc.stdint", Symbol: "uint32_t"},
	"uint64_t":  {Module: "libc.stdint", Symbol: "uint64_t"},
	"intptr_t":  {Module: "libc.stdint", Symbol: "intptr_t"},
	"uintptr_t": {Module: "libc.stdint", Symbol: "uintptr_t"},
	"intmax_t":  {Module: "libc.stdint", Symbol: "intmax_t"},
	"uintmax_t": {Module: "libc.stdint", Symbol: "uintmax_t"},
	"FILE":      {Module: "libc.stdio", Symbol: "FILE"},
	"fpos_t":    {Module: "libc.stdio", Symbol: "fpos_t"},
	"clock_t":   {Module: "libc.time", Symbol: "clock_t"},
	"time_t":    {Module: "libc.time", Symbol: "time_t"},

	// C++ standard library.
	"std::string":         {Module: "libcpp.string", Symbol: "string"},
	"std::wstring":        {Module: "libcpp.string", Symbol: "wstring"},
	"std::vector":         {Module: "libcpp.vector", Symbol: "vector"},
	"std::map":            {Module: "libcpp.map", Symbol: "map"},
	"std::multimap":       {Module: "libcpp.map", Symbol: "multimap"},
	"std::unordered_map":  {Module: "libcpp.unordered_map", Symbol: "unordered_map"},
	"std::set":            {Module: "libcpp.set", Symbol: "set"},
	"std::multiset":       {Module: "libcpp.set", Symbol: "multiset"},
	"std::unordered_set":  {Module: "libcpp.unordered_set", Symbol: "unordered_set"},
	"std::list":           {Module: "libcpp.list", Symbol: "list"},
	"std::forward_list":   {Module: "libcpp.forward_list", Symbol: "forward_list"},
	"std::deque":          {Module: "libcpp.deque", Symbol: "deque"},
	"std::queue":          {Module: "libcpp.queue", Symbol: "queue"},
	"std::priority_queue": {Module: "libcpp.queue", Symbol: "priority_queue"},
	"std::stack":          {Module: "libcpp.stack", Symbol: "stack"},
	"std::pair":           {Module: "libcpp.utility", Symbol: "pair"},
	"std::shared_ptr":     {Module: "libcpp.memory", Symbol: "shared_ptr"},
	"std::unique_ptr":     {Module: "libcpp.memory", Symbol: "unique_ptr"},
	"std::weak_ptr":       {Module: "libcpp.memory", Symbol: "weak_ptr"},
	"std::function":       {Module: "libcpp.functional", Symbol: "function"},
	"std::complex":        {Module: "libcpp.complex", Symbol: "complex"},
	"std::atomic":         {Module: "libcpp.atomic", Symbol: "atomic"},
	"std::nullptr_t":      {Module: "libcpp", Symbol: "nullptr_t"},

	// Spelling corrections with no cross-module difference.
	"std::size_t":    {Symbol: "size_t", NoImport: true},
	"std::ssize_t":   {Symbol: "ssize_t", NoImport: true},
	"std::ptrdiff_t": {Symbol: "ptrdiff_t", NoImport: true},
}
