// internal/domain/models/formtemplate.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateField is one question in a survey/assessment template.
type TemplateField struct {
	Key      string `bson:"key" json:"key"`
	Label    string `bson:"label" json:"label"`
	Required bool   `bson:"required" json:"required"`
}

// FormTemplate defines the shape of a survey/assessment. Instances record
// answers; the template's required fields gate the draft -> pending submit.
type FormTemplate struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`

	Name       string          `bson:"name" json:"name"`
	SurveyType string          `bson:"survey_type" json:"survey_type"`
	Fields     []TemplateField `bson:"fields" json:"fields"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RequiredKeys returns the keys of all required fields.
func (t *FormTemplate) RequiredKeys() []string {
	var keys []string
	for _, f := range t.Fields {
		if f.Required {
			keys = append(keys, f.Key)
		}
	}
	return keys
}
