// SPDX-License-Identifier: Apache-2.0

package flags

import (
	"github.com/spf13/viper"
)

func Output() string {
	return viper.GetString("OUTPUT")
}

func Append() bool {
	return viper.GetBool("APPEND")
}
