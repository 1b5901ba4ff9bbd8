// Package mocks holds testify mocks and recording fakes for the ports package.
package mocks

import "github.com/stretchr/testify/mock"

// TestingT is the subset of *testing.T the constructors need
type TestingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(m *mock.Mock, t TestingT) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}
