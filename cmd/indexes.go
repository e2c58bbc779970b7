/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/memoria-app/apiserver/config"
	"github.com/memoria-app/apiserver/internal/db"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexesCmd represents the indexes command.
var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Manage database indexes",
}

var indexesEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create the indexes the server relies on",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		database, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect failed: %w", err)
		}
		defer func() {
			_ = database.Client().Disconnect(cmd.Context())
		}()

		users := database.Collection("users")
		_, err = users.Indexes().CreateMany(cmd.Context(), []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		})
		if err != nil {
			return fmt.Errorf("create user indexes failed: %w", err)
		}

		posts := database.Collection("posts")
		_, err = posts.Indexes().CreateMany(cmd.Context(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "username", Value: 1}}},
		})
		if err != nil {
			return fmt.Errorf("create post indexes failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
	indexesCmd.AddCommand(indexesEnsureCmd)
}
