// ./main.go
package main

import (
	"github.com/karstfell/siteforge/cmd"
)

func main() {
	cmd.Execute()
}
