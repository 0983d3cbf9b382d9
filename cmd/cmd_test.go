package cmd

import "testing"

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"crawl":  true,
		"query":  true,
		"rank":   true,
		"index":  true,
		"schema": true,
	}
	for _, c := range rootCmd.Commands() {
		delete(want, c.Name())
	}
	if len(want) != 0 {
		t.Errorf("subcommands missing from rootCmd: %v", want)
	}
}

func TestRootCommandHasConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	if flag == nil {
		t.Fatal("expected a persistent --config flag")
	}
	if flag.Shorthand != "c" {
		t.Errorf("--config shorthand = %q, want \"c\"", flag.Shorthand)
	}
}

func TestQueryCommandHasQFlag(t *testing.T) {
	flag := queryCmd.Flags().Lookup("q")
	if flag == nil {
		t.Fatal("expected a --q flag on the query command")
	}
}
