// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/born-vae/internal/backend/cpu"
	"github.com/born-ml/born-vae/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	y := backend.Tanh(tensor.Full(tensor.Shape{2, 3}, 0.5))
func New() *Backend {
	return internalcpu.New()
}
