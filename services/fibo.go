package services

// Fibo returns the n-th term of the sequence fibo(0) = fibo(1) = 1,
// fibo(n) = fibo(n-2) + fibo(n-1).
//
// It recurses naively on purpose: the running time grows as phi^n so the
// /fibo endpoint can burn a predictable amount of CPU. Nothing is cached and
// there is no upper bound on n. Values below 2, negatives included, return 1.
func Fibo(n int) int {
	if n < 2 {
		return 1
	}
	return Fibo(n-2) + Fibo(n-1)
}
