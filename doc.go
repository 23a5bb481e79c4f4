// Package hwtimer implements an approximate, high-throughput hashed wheel
// timer: a scheduler for large numbers of delayed one-shot tasks where
// near-constant amortized cost for insertion, cancellation, and expiry
// matters more than exact firing time.
//
// A single background tick worker owns the wheel's bucket array and every
// mutation of bucket links; producers only ever touch atomic counters, the
// atomic state word on a Timeout, and two lock-free queues. See the package
// tests for usage.
package hwtimer
