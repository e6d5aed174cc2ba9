package main

import (
	"github.com/yuanzhixiang/substrate/cmd"
)

func main() {
	cmd.Execute()
}
