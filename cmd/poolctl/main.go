// Command poolctl sizes pool layouts and runs allocator simulations.
package main

func main() {
	execute()
}
