package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

type GroundWaterSample struct{ ent.Schema }

func (GroundWaterSample) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "ground_water_samples"},
	}
}

func (GroundWaterSample) Fields() []ent.Field {
	return []ent.Field{
		// survey serial number, the natural key of a sample
		field.Int("s_no").Unique().Immutable(),
		field.String("state").Default(""),
		field.String("district").Default(""),
		field.String("location").Default(""),
		field.Float("longitude"),
		field.Float("latitude"),
		field.Int("year").Default(0),
		field.Float("ph").Optional().Nillable(),
		field.Float("ec_us_cm").Optional().Nillable(),
		field.Float("co3_mg_l").Optional().Nillable(),
		field.Float("hco3_mg_l").Optional().Nillable(),
		field.Float("cl_mg_l").Optional().Nillable(),
		field.Float("f_mg_l").Optional().Nillable(),
		field.Float("so4_mg_l").Optional().Nillable(),
		field.Float("no3_mg_l").Optional().Nillable(),
		field.Float("po4_mg_l").Optional().Nillable(),
		field.Float("total_hardness_mg_l").Optional().Nillable(),
		field.Float("ca_mg_l").Optional().Nillable(),
		field.Float("mg_mg_l").Optional().Nillable(),
		field.Float("na_mg_l").Optional().Nillable(),
		field.Float("k_mg_l").Optional().Nillable(),
		field.Float("fe_ppm").Optional().Nillable(),
		field.Float("as_ppb").Optional().Nillable(),
		field.Float("u_ppb").Optional().Nillable(),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (GroundWaterSample) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("year"),
		index.Fields("state", "district"),
	}
}
