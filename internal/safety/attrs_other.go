//go:build !linux

package safety

func platformSnapshot(string, *attributes) {}
