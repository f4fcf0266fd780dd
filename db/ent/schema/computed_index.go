package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/aquaguard/hmpi-service/constants"
	"github.com/aquaguard/hmpi-service/db/ent/schema/utils"
)

type ComputedIndex struct{ ent.Schema }

func (ComputedIndex) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "computed_indices"},
	}
}

func (ComputedIndex) Fields() []ent.Field {
	return []ent.Field{
		// tagged sample reference: ground-water samples store their serial
		// number as text, generic samples an opaque id
		field.String("sample_kind").NotEmpty().
			Validate(utils.EnumValidator("ground_water", "generic")),
		field.String("sample_id").NotEmpty(),
		field.Float("hpi_value"),
		field.Float("hei_value").Optional().Nillable(),
		field.Float("cd_value").Optional().Nillable(),
		field.Float("mi_value").Optional().Nillable(),
		field.String("quality_category").NotEmpty().
			Validate(utils.EnumValidator(constants.CategoriesAsStrings()...)),
		field.String("calculation_method").NotEmpty(),
		field.Time("computed_at").Default(time.Now),
		field.String("notes").Default(""),
	}
}

func (ComputedIndex) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("sample_kind", "sample_id", "calculation_method").Unique(),
		index.Fields("quality_category"),
		index.Fields("hpi_value"),
	}
}
