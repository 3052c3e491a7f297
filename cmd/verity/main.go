// Package main provides the verity CLI for design-property resolution and
// requirement verification.
package main

func main() {
	Execute()
}
