package main

// main is never called: this package is built with -buildmode=plugin.
// It exists so that `go build ./...` can link the package.
func main() {}
