package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := []string{"sync", "upload", "archive", "delete", "run", "devices", "folders", "ledger"}
	for _, name := range names {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		require.Equal(t, name, cmd.Name())
	}

	push, _, err := rootCmd.Find([]string{"ledger", "push"})
	require.NoError(t, err)
	require.Equal(t, "push", push.Name())
}

func TestDeleteNeedsManifest(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"delete"})
	require.NoError(t, err)
	require.Error(t, cmd.Args(cmd, nil))
	require.NoError(t, cmd.Args(cmd, []string{"phonesync-1.csv"}))
}

func TestFlagDefaults(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	require.Equal(t, "phonesync.yml", flag.DefValue)

	folders, _, err := rootCmd.Find([]string{"folders"})
	require.NoError(t, err)
	require.Equal(t, "2", folders.Flags().Lookup("depth").DefValue)
}
