package producer

import (
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlags binds each named flag to the viper key of the same name.
// Unset flags don't override config files or env.
func bindFlags(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := viper.BindPFlag(name, fs.Lookup(name)); err != nil {
			log.Fatalf("Error binding flag '%s': %v", name, err)
		}
	}
}
