package user

import mrand "math/rand"

var adjectives = []string{
	"agile", "brave", "calm", "daring", "eager",
	"fancy", "gentle", "happy", "jolly", "kind",
	"lively", "mighty", "noble", "playful", "quick",
	"radiant", "spirited", "trusty", "upbeat", "vibrant",
	"wise", "zealous", "bright", "cheerful", "nimble",
}

var birds = []string{
	"albatross", "bluebird", "canary", "dove", "eagle",
	"falcon", "goldfinch", "hawk", "ibis", "jay",
	"kingfisher", "lark", "magpie", "nightingale", "oriole",
	"parrot", "quail", "robin", "sparrow", "toucan",
	"heron", "kestrel", "owl", "raven", "wren",
}

// nickname returns an adjective-bird handle such as "brave-falcon".
func nickname(r *mrand.Rand) string {
	return adjectives[r.Intn(len(adjectives))] + "-" + birds[r.Intn(len(birds))]
}
