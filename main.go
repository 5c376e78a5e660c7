package main

import "storefront-backend/cmd"

func main() {
	cmd.Execute()
}
