// Purku - cloud account teardown engine
// Discover. Plan. Demolish.
package main

func main() {
	Execute()
}
