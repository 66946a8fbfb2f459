/*
Package dsl provides a fluent Go builder for regulatory network topologies.

It is an alternative to the network section of a configuration file, useful for tests,
generated models and examples.

Example usage:

	b := dsl.New().Steps(25)

	b.Input("EGF")
	b.Input("Oxygen").Default(true)
	b.Gene("ERK").Activated("EGF").Inhibited("p53")
	b.Gene("p53").Logic("NOT Oxygen")
	b.Fate("Proliferation").Activated("ERK")
	b.Fate("Apoptosis").Activated("p53").Inhibited("ERK")

	loader, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	// The loader is a ports.TopologyLoader
	sim, err := cellfate.New("model", cellfate.WithConfig(cfg), cellfate.WithLoader(loader))
*/
package dsl
