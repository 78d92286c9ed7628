package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the demo login trio and a couple of sample roster records.
// Usage: go run scripts/seed_demo_data.go [password]
func main() {
	_ = godotenv.Load()

	password := "shakerpd"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}

	uri := os.Getenv("DB_URI")
	dbName := os.Getenv("DB_NAME")
	if uri == "" || dbName == "" {
		fmt.Println("DB_URI and DB_NAME must be set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		fmt.Printf("Error connecting to mongo: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	db := client.Database(dbName)
	now := primitive.NewDateTimeFromTime(time.Now())

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	users := []struct {
		username string
		name     string
		role     string
	}{
		{"admin", "Demo Administrator", "admin"},
		{"supervisor", "Demo Supervisor", "supervisor"},
		{"officer", "Demo Officer", "officer"},
	}

	for _, u := range users {
		_, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"username": u.username},
			bson.M{
				"$set": bson.M{
					"name":      u.name,
					"role":      u.role,
					"password":  string(hashedPassword),
					"updatedAt": now,
				},
				"$setOnInsert": bson.M{
					"_id":       primitive.NewObjectID(),
					"createdAt": now,
				},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			fmt.Printf("Error seeding user %s: %v\n", u.username, err)
			os.Exit(1)
		}
		fmt.Printf("Seeded user %s (%s) with password %q\n", u.username, u.role, password)
	}

	records := []bson.M{
		{
			"_id":            primitive.NewObjectID().Hex(),
			"jailLocation":   "Main",
			"cell":           "A-1",
			"name":           "Doe, John",
			"sex":            "male",
			"ocaNumber":      "24-00123",
			"arrestDateTime": time.Now().Add(-36 * time.Hour).Format("2006-01-02T15:04"),
			"chargeClass":    "felony",
			"charges":        "Burglary",
			"bond":           "5000",
			"courtDate":      time.Now().Add(7 * 24 * time.Hour).Format("2006-01-02"),
			"hasPhoto":       false,
			"createdAt":      now,
			"updatedAt":      now,
		},
		{
			"_id":             primitive.NewObjectID().Hex(),
			"jailLocation":    "Main",
			"cell":            "B-2",
			"name":            "Roe, Jane",
			"sex":             "female",
			"ocaNumber":       "24-00124",
			"arrestDateTime":  time.Now().Add(-72 * time.Hour).Format("2006-01-02T15:04"),
			"chargeClass":     "misdemeanor",
			"charges":         "Trespass",
			"releaseDateTime": time.Now().Add(-2 * time.Hour).Format("2006-01-02T15:04"),
			"hasPhoto":        false,
			"createdAt":       now,
			"updatedAt":       now,
		},
	}

	for _, record := range records {
		_, err := db.Collection("roster").UpdateOne(ctx,
			bson.M{"name": record["name"]},
			bson.M{"$setOnInsert": record},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			fmt.Printf("Error seeding roster record: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("Seeded %d sample roster records\n", len(records))
}
