package main

import "github.com/jrsteele09/go-storefront-client/cmd/storefront/cmd"

func main() {
	cmd.Execute()
}
