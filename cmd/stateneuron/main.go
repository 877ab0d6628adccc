// Command stateneuron runs state-neuron simulations driven by Poisson input
// populations.
package main

import "github.com/sarchlab/stateneuron/cmd/stateneuron/cmd"

func main() {
	cmd.Execute()
}
