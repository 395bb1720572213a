/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps projects in a MongoDB collection, one document per project.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoProject struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	Title     string    `bson:"title"`
	Payload   string    `bson:"payload,omitempty"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// OpenMongo connects to uri and uses the "projects" collection of database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	coll := client.Database(database).Collection("projects")
	_, err = coll.Indexes().CreateOne(cctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "updated_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Create(ctx context.Context, rec Record) error {
	_, err := s.coll.InsertOne(ctx, toMongo(rec))
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *MongoStore) Put(ctx context.Context, rec Record) error {
	doc := toMongo(rec)
	update := bson.M{"$set": bson.M{
		"title":      doc.Title,
		"payload":    doc.Payload,
		"updated_at": doc.UpdatedAt,
	}}
	// The owner is part of the filter, so an upsert over someone else's id hits the _id index.
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": rec.ID, "owner": rec.Owner}, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, owner, id string) (Record, error) {
	var doc mongoProject
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "owner": owner}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, notFound(id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("find project: %w", err)
	}
	return Record{ID: doc.ID, Owner: doc.Owner, Title: doc.Title, Payload: []byte(doc.Payload), UpdatedAt: doc.UpdatedAt}, nil
}

func (s *MongoStore) List(ctx context.Context, owner string) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"payload": 0})
	cur, err := s.coll.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer cur.Close(ctx)
	out := []Summary{}
	for cur.Next(ctx) {
		var doc mongoProject
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, Summary{ID: doc.ID, Title: doc.Title, UpdatedAt: doc.UpdatedAt})
	}
	return out, cur.Err()
}

func (s *MongoStore) Delete(ctx context.Context, owner, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *MongoStore) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func toMongo(rec Record) mongoProject {
	return mongoProject{
		ID:        rec.ID,
		Owner:     rec.Owner,
		Title:     rec.Title,
		Payload:   string(rec.Payload),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}
