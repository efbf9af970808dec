// Package textutil provides text helpers shared by the storage and CLI
// layers: file name escaping, dated default names and column labels.
package textutil
