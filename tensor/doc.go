// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 tensors exchanged with the VAE.
//
// # Overview
//
// Batches handed to the trainer, latent points passed to the decoder and
// mosaics returned from sampling are all *tensor.Tensor values:
//   - Row-major float32 storage
//   - Shape with NumPy-style broadcasting rules
//   - Copying constructors (FromSlice) and sharing views (View)
//
// # Basic Usage
//
//	import "github.com/born-ml/born-vae/tensor"
//
//	// A batch of 100 flattened 28x28 images.
//	x, err := tensor.FromSlice(pixels, tensor.Shape{100, 784})
//	if err != nil {
//	    return err
//	}
//
//	// Latent points for decoding.
//	z := tensor.Zeros(tensor.Shape{16, 2})
//
// # Implementing a Batch Source
//
// Custom data pipelines return tensors from NextBatch:
//
//	type mySource struct{ rows [][]float32 }
//
//	func (s *mySource) NextBatch(n int) (*tensor.Tensor, error) {
//	    flat := make([]float32, 0, n*784)
//	    for i := 0; i < n; i++ {
//	        flat = append(flat, s.rows[i]...)
//	    }
//	    return tensor.FromSlice(flat, tensor.Shape{n, 784})
//	}
package tensor
