// Package serialization implements the .bvae checkpoint format used to save
// and restore VAE parameters together with optimizer state.
//
//	Format Structure:
//	  [0x00-0x03: Magic "BVAE"]
//	  [0x04-0x07: Version (uint32 LE)]
//	  [0x08-0x0B: Flags (uint32 LE)]
//	  [0x0C-0x0F: Reserved]
//	  [0x10-0x17: Header Size (uint64 LE)]
//	  [0x18-0x1F: Data Size (uint64 LE)]
//	  [0x20-0x3F: SHA-256 of the data section]
//	  [Header: JSON metadata]
//	  [Tensor data: little-endian float32 or float16, 64-byte aligned]
//
// Tensors are stored in lexical name order so that two saves of the same
// state produce identical data sections.
//
// Example usage:
//
//	w, err := serialization.Create("model.ckpt")
//	if err != nil {
//	    return err
//	}
//	if err := w.WriteStateDict(stateDict, header, serialization.WriteOptions{}); err != nil {
//	    _ = w.Abort()
//	    return err
//	}
//	return w.Close()
//
//	r, err := serialization.Open("model.ckpt")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	stateDict, err := r.ReadStateDict()
package serialization
