/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"spotify-tools/internal/logging"
	"spotify-tools/internal/store"
)

var cfgFile string
var clientID string
var clientSecret string
var databasePath string
var dataDir string
var playlists []string
var sendgridApiKey string

var log = logging.New()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spotify-tools",
	Short: "Collects and analyzes Spotify playlist metadata",
	Long: `Fetches playlist tracks and audio features from the Spotify Web API,
loads them into a SQLite database, and runs popularity analyses on top.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.spotify-tools.yaml)")

	rootCmd.PersistentFlags().StringVar(
		&clientID, "client_id", "", "Spotify client ID")
	viper.BindPFlag("client_id", rootCmd.PersistentFlags().Lookup("client_id"))

	rootCmd.PersistentFlags().StringVar(
		&clientSecret, "client_secret", "", "Spotify client secret")
	viper.BindPFlag("client_secret", rootCmd.PersistentFlags().Lookup("client_secret"))

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./spotify.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(
		&dataDir, "data-dir", "./data", "Directory for raw API snapshots")
	viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	rootCmd.PersistentFlags().StringSliceVar(
		&playlists, "playlists", nil, "Playlists to collect, as id=name pairs")
	viper.BindPFlag("playlists", rootCmd.PersistentFlags().Lookup("playlists"))

	rootCmd.PersistentFlags().StringVar(&sendgridApiKey, "sendgrid_api_key", "", "SendGrid API key for emailed reports")
	viper.BindPFlag("sendgrid_api_key", rootCmd.PersistentFlags().Lookup("sendgrid_api_key"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Credentials may live in a .env file next to the binary, matching
	// the layout this tool replaces.
	godotenv.Load()
	viper.BindEnv("client_id", "SPOTIFY_CLIENT_ID")
	viper.BindEnv("client_secret", "SPOTIFY_CLIENT_SECRET")
	viper.BindEnv("sendgrid_api_key", "SENDGRID_API_KEY")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".spotify-tools" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".spotify-tools")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func openStore(dbPath string) (*store.Store, error) {
	db, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", dbPath, err)
	}
	return db, nil
}

// requireDataset fails early when the database has not been built yet,
// so analysis commands report a usable hint instead of empty tables.
func requireDataset(db *store.Store) error {
	exists, err := db.TableExists("Tracks")
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("no dataset loaded, run 'collect' then 'load' first")
	}
	return nil
}
