// The spikesim command runs a set of Poisson spike source instances from a
// scenario file.
package main

func main() {
	Execute()
}
