// Command deepsleep simulates a board that counts its wake-ups across deep
// sleeps.
package main

import "github.com/sarchlab/deepsleep/deepsleep/cmd"

func main() {
	cmd.Execute()
}
