//go:build !unix

package tcp

func mapErrno(err error) error { return nil }
