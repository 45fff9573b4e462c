// Package mock provides test doubles for the ai package interfaces.
// Mocks return concrete types so tests can inject behavior through function
// fields and assert on call counts.
package mock
