package main

import "github.com/oshokin/lambda-deploy/cmd/lambda-deploy/cmd"

func main() {
	cmd.Execute()
}
