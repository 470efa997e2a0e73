package main

import "github.com/skellam/mcrun/cmd"

// TODO: checkpointing for long runs (freeze a chain's generator/model/sampler
//       state so an ensemble can be continued later)

func main() {
	cmd.Execute()
}
