// Package remote provides byte access to the address space reflection
// metadata lives in.
//
// Metadata may sit in the current process, in a file mapped at its link
// addresses, or in the linear memory of a WebAssembly guest. Reader hides
// which:
//
//	r := remote.Bytes{Base: 0x10000, Data: fieldmd}
//	mem := remote.WrapMemory(mod.ExportedMemory("memory"))
//
// ReadSection turns an address range of any Reader into a records.Section.
package remote
