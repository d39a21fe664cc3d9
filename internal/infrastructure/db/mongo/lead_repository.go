package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
)

const collectionLeads = "leads"

// LeadRepository persists leads in MongoDB. The (tenant, email) pair is
// protected by a unique index; Upsert relies on a single atomic
// update-with-upsert so concurrent submitters never interleave fields.
type LeadRepository struct {
	col *mongo.Collection
}

func NewLeadRepository(db *mongo.Database) *LeadRepository {
	return &LeadRepository{col: db.Collection(collectionLeads)}
}

// Upsert inserts lead or merges it into the existing (tenant, email) record.
// $setOnInsert keeps the original id and created_at on merge; name, channel,
// note and tool_id always take the incoming values. A single FindOneAndUpdate
// returns the surviving document, so no second read is needed to learn which
// id won.
func (r *LeadRepository) Upsert(ctx context.Context, lead *domain.Lead) (*ports.UpsertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"tenant": lead.Tenant, "email": lead.Email}
	update := bson.M{
		"$set": bson.M{
			"name":    lead.Name,
			"channel": lead.Channel,
			"note":    lead.Note,
			"tool_id": lead.ToolID,
		},
		"$setOnInsert": bson.M{
			"_id":        lead.ID,
			"tenant":     lead.Tenant,
			"email":      lead.Email,
			"created_at": lead.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var merged struct {
		ID string `bson:"_id"`
	}
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&merged)
	if mongo.IsDuplicateKeyError(err) {
		// Two first-time submitters raced on the unique index; the loser's
		// retry matches the winner's document and merges normally.
		err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&merged)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert lead: %w", err)
	}

	// The candidate id only survives when the document was just created.
	return &ports.UpsertResult{ID: merged.ID, Duplicate: merged.ID != lead.ID}, nil
}

// List returns the tenant's leads ordered by created_at descending. A tenant
// (or collection) with no data yields an empty slice.
func (r *LeadRepository) List(ctx context.Context, tenant string) ([]domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"tenant": tenant}, opts)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer cur.Close(ctx)

	leads := []domain.Lead{}
	if err := cur.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

// Delete removes a lead by id within the tenant. Missing ids are a no-op.
func (r *LeadRepository) Delete(ctx context.Context, tenant, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "tenant": tenant})
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}

// EnsureSchema creates the unique (tenant, email) index and the created_at
// sort index. CreateMany with identical specs is idempotent, so concurrent
// callers all succeed.
func (r *LeadRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_leads_tenant_email"),
		},
		{
			Keys:    bson.D{{Key: "tenant", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_leads_tenant_created"),
		},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure lead indexes: %w", err)
	}
	return nil
}

// Describe lists the collections and lead indexes for admin.db.tables.
func (r *LeadRepository) Describe(ctx context.Context) (*ports.SchemaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	info := &ports.SchemaInfo{Driver: "mongo", Tables: []ports.SchemaItem{}, Indexes: []ports.SchemaItem{}}

	names, err := r.col.Database().ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("describe schema: %w", err)
	}
	for _, name := range names {
		info.Tables = append(info.Tables, ports.SchemaItem{Name: name})
	}

	cur, err := r.col.Indexes().List(ctx)
	if err != nil {
		// A collection that does not exist yet has no indexes; that is not
		// an error for introspection.
		return info, nil
	}
	defer cur.Close(ctx)

	var specs []bson.M
	if err := cur.All(ctx, &specs); err != nil {
		return nil, fmt.Errorf("describe schema: %w", err)
	}
	for _, spec := range specs {
		name, _ := spec["name"].(string)
		info.Indexes = append(info.Indexes, ports.SchemaItem{
			Name:   name,
			Target: collectionLeads,
			Spec:   fmt.Sprintf("%v", spec["key"]),
		})
	}
	return info, nil
}
