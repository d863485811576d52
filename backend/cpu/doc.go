// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// The backend implements the float32 kernels the VAE needs:
//   - Elementwise arithmetic with NumPy-compatible broadcasting
//   - Batched matrix multiplication on gonum's BLAS
//   - Tanh, ReLU, Sigmoid and a stable sigmoid cross-entropy
//   - Full and per-dimension sums
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/born-vae/backend/cpu"
//	    "github.com/born-ml/born-vae/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    a := tensor.Ones(tensor.Shape{4, 3, 2})
//	    b := tensor.Ones(tensor.Shape{4, 2, 1})
//	    c := backend.BatchMatMul(a, b) // [4, 3, 1]
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// allocates its result and does not share mutable state.
package cpu
