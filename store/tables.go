package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// Tables is the Azure Table storage backend. Each collection maps to one
// table; PartitionKey is the user id, RowKey the entity id and the record
// body lives in a single JSON column so the document shape stays opaque to
// the storage layer.
type Tables struct {
	clients map[string]*aztables.Client
}

// NewTables creates a backend from the given connection string. tables maps
// collection names to table names.
func NewTables(connStr string, tables map[string]string) (*Tables, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	clients := make(map[string]*aztables.Client, len(tables))
	for collection, table := range tables {
		clients[collection] = svc.NewClient(table)
	}
	return &Tables{clients: clients}, nil
}

type docEntity struct {
	aztables.Entity
	Doc string `json:"Doc"`
}

func (t *Tables) client(collection string) (*aztables.Client, error) {
	c, ok := t.clients[collection]
	if !ok {
		return nil, fmt.Errorf("store: unknown collection %q", collection)
	}
	return c, nil
}

// List retrieves all entities in one user's partition of the collection.
func (t *Tables) List(ctx context.Context, userID, collection string) (Snapshot, error) {
	client, err := t.client(collection)
	if err != nil {
		return nil, err
	}
	filter := "PartitionKey eq '" + userID + "'"
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	snap := Snapshot{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var ent docEntity
			if err := json.Unmarshal(e, &ent); err != nil {
				return nil, err
			}
			snap[ent.RowKey] = json.RawMessage(ent.Doc)
		}
	}
	return snap, nil
}

func (t *Tables) Get(ctx context.Context, userID, collection, id string) (json.RawMessage, error) {
	client, err := t.client(collection)
	if err != nil {
		return nil, err
	}
	resp, err := client.GetEntity(ctx, userID, id, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var ent docEntity
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return nil, err
	}
	return json.RawMessage(ent.Doc), nil
}

func (t *Tables) Put(ctx context.Context, userID, collection, id string, doc json.RawMessage) error {
	client, err := t.client(collection)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]any{
		"PartitionKey": userID,
		"RowKey":       id,
		"Doc":          string(doc),
	})
	if err != nil {
		return err
	}
	_, err = client.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	return err
}

// Merge folds fields into the stored document. Last writer wins; there is
// no optimistic concurrency on purpose.
func (t *Tables) Merge(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	doc, err := t.Get(ctx, userID, collection, id)
	if err != nil {
		return err
	}
	var record map[string]any
	if err := json.Unmarshal(doc, &record); err != nil {
		return err
	}
	for k, v := range fields {
		record[k] = v
	}
	merged, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return t.Put(ctx, userID, collection, id, merged)
}

func (t *Tables) Delete(ctx context.Context, userID, collection, id string) error {
	client, err := t.client(collection)
	if err != nil {
		return err
	}
	if _, err := client.DeleteEntity(ctx, userID, id, nil); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}
