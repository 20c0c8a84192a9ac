package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"masterboxer.com/project-micro-feed/database"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var counts database.SeedCounts
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake users, posts and comments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found, using environment")
			}

			cfg, err := database.LoadConfig()
			if err != nil {
				return err
			}
			db, err := database.ConnectDB(cfg)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer db.Close()

			if migrate {
				if err := database.MigrationsUp(db); err != nil {
					return err
				}
			}

			log.Println("🌱 Running seed job")
			created, err := database.NewSeeder(db).Seed(cmd.Context(), counts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d users, %d posts, and %d comments.\n",
				created.Users, created.Posts, created.Comments)
			log.Println("✅ Seed job finished")
			return nil
		},
	}

	cmd.Flags().IntVar(&counts.Users, "users", 10, "number of users to create")
	cmd.Flags().IntVar(&counts.Posts, "posts", 50, "number of posts to create")
	cmd.Flags().IntVar(&counts.Comments, "comments", 200, "number of comments to create")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply schema migrations first")

	return cmd
}
