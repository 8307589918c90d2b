package domain

// Speech represents one speech record from the vie-publique metadata catalog,
// plus the fields the crawl fills in (Texte, Source).
//
// JSON tags keep the catalog's French field names so a loaded record
// round-trips to the dataset artifact unchanged; renaming to English keys
// happens only in the post-processing pass. BSON tags mirror the JSON tags
// for the MongoDB sink.
type Speech struct {
	ID            string    `json:"id" bson:"id"`
	Titre         string    `json:"titre" bson:"titre"`
	URL           string    `json:"url" bson:"url"`
	Domaine       string    `json:"domaine,omitempty" bson:"domaine,omitempty"`
	Prononciation string    `json:"prononciation,omitempty" bson:"prononciation,omitempty"`
	Intervenants  []Speaker `json:"intervenants,omitempty" bson:"intervenants,omitempty"`
	AuteurMoral   string    `json:"auteur_moral,omitempty" bson:"auteur_moral,omitempty"`
	Circonstance  string    `json:"circonstance,omitempty" bson:"circonstance,omitempty"`
	TypeEmetteur  string    `json:"type_emetteur,omitempty" bson:"type_emetteur,omitempty"`
	TypeDocument  string    `json:"type_document,omitempty" bson:"type_document,omitempty"`
	TypeMedia     string    `json:"type_media,omitempty" bson:"type_media,omitempty"`
	Media         string    `json:"media,omitempty" bson:"media,omitempty"`
	Resume        string    `json:"resume,omitempty" bson:"resume,omitempty"`
	Thematiques   []string  `json:"thematiques,omitempty" bson:"thematiques,omitempty"`
	Descripteurs  []string  `json:"descripteurs,omitempty" bson:"descripteurs,omitempty"`
	MiseEnLigne   string    `json:"mise_en_ligne,omitempty" bson:"mise_en_ligne,omitempty"`
	MiseAJour     string    `json:"mise_a_jour,omitempty" bson:"mise_a_jour,omitempty"`

	// Texte is the extracted transcript body; empty when extraction missed.
	Texte string `json:"texte" bson:"texte"`

	// Source is the attribution line found at the end of some transcripts
	// (e.g. a broadcaster or publication name), when present.
	Source string `json:"source,omitempty" bson:"source,omitempty"`
}

// Speaker is one entry of a speech's intervenants list.
type Speaker struct {
	Nom     string `json:"nom" bson:"nom"`
	Qualite string `json:"qualite,omitempty" bson:"qualite,omitempty"`
}
