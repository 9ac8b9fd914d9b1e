// Package util provides small helpers shared by the provider adapters:
// typed reads from factory option maps, size parsing, credential
// sanitising and masking, and run id validation.
package util
