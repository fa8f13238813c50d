package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/epidash/internal/epidemic/domain"
)

// OCRRepoMongoDB implementa domain.OCRStore sobre MongoDB. El almacén es
// solo-añadir: no hay camino de actualización ni borrado.
type OCRRepoMongoDB struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ domain.OCRStore = (*OCRRepoMongoDB)(nil)

func NewOCRRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*OCRRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	return &OCRRepoMongoDB{
		client: client,
		coll:   client.Database(dbName).Collection("ocr_results"),
	}, nil
}

// Struct de BSON local para no contaminar el dominio con tags de BSON.
type mongoOCRDocument struct {
	ID        uuid.UUID `bson:"_id"`
	Data      string    `bson:"data"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (r *OCRRepoMongoDB) Save(ctx context.Context, doc *domain.OCRDocument) error {
	md := mongoOCRDocument{
		ID:        doc.ID,
		Data:      doc.Data,
		CreatedAt: doc.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, md); err != nil {
		return fmt.Errorf("insert ocr document: %w", err)
	}
	return nil
}
