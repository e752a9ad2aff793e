package main

import "github.com/edgeflare/fakeuser/cmd/producer"

func main() {
	producer.Main()
}
