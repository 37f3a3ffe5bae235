package moize

// Wrap1 memoizes a one-argument function behind a front that keeps its
// signature, so call sites stay type-checked. The returned instance manages
// the front's cache; its default stats profile is named after fn.
//
// Recursive functions memoize their subresults through a declared variable:
//
//	var fib func(int) int
//	fib, _ = moize.Wrap1(func(n int) int {
//	    if n < 2 {
//	        return n
//	    }
//	    return fib(n-1) + fib(n-2)
//	})
func Wrap1[A, R any](fn func(A) R, opts ...Option) (func(A) R, *Moized) {
	m := New(func(args ...any) any {
		return fn(args[0].(A))
	}, namedOptions(fn, opts)...)
	return func(a A) R {
		return m.Call(a).(R)
	}, m
}

// Wrap2 memoizes a two-argument function. See [Wrap1].
func Wrap2[A, B, R any](fn func(A, B) R, opts ...Option) (func(A, B) R, *Moized) {
	m := New(func(args ...any) any {
		return fn(args[0].(A), args[1].(B))
	}, namedOptions(fn, opts)...)
	return func(a A, b B) R {
		return m.Call(a, b).(R)
	}, m
}

// Wrap3 memoizes a three-argument function. See [Wrap1].
func Wrap3[A, B, C, R any](fn func(A, B, C) R, opts ...Option) (func(A, B, C) R, *Moized) {
	m := New(func(args ...any) any {
		return fn(args[0].(A), args[1].(B), args[2].(C))
	}, namedOptions(fn, opts)...)
	return func(a A, b B, c C) R {
		return m.Call(a, b, c).(R)
	}, m
}

// namedOptions seeds the default profile name from the typed function rather
// than the untyped adapter closure New sees. An explicit WithProfileName in
// opts still wins because it applies later.
func namedOptions(fn any, opts []Option) []Option {
	return append([]Option{WithProfileName(functionName(fn))}, opts...)
}
