package config

import "github.com/nao1215/relevador/internal/model"

// DefaultKeywords returns the built-in multilingual keyword lists
// (Spanish, English, Catalan, Portuguese, French, Italian).
// The returned map is a fresh copy on every call.
func DefaultKeywords() map[model.Category][]string {
	return map[model.Category][]string{
		model.OpenScience: {
			// es
			"ciencia abierta", "datos abiertos", "acceso abierto", "investigación abierta",
			"repositorio institucional", "datos fair", "investigación reproducible",
			// en
			"open science", "open data", "open access", "open research", "fair data",
			"institutional repository", "reproducible research", "transparent research",
			// ca
			"ciència oberta", "dades obertes", "accés obert", "investigació oberta",
			"repositori institucional", "investigació reproductible",
			// pt
			"ciência aberta", "dados abertos", "acesso aberto", "pesquisa aberta",
			"repositório institucional", "pesquisa reproduzível",
			// fr
			"science ouverte", "données ouvertes", "accès libre", "recherche ouverte",
			"dépôt institutionnel", "recherche reproductible",
			// it
			"scienza aperta", "dati aperti", "accesso aperto", "ricerca aperta",
			"repository istituzionale", "ricerca riproducibile",
		},
		model.PublicCommunication: {
			"comunicación científica", "divulgación científica", "comunicación pública de la ciencia",
			"cultura científica", "alfabetización científica", "museo de la ciencia",
			"science communication", "public engagement", "science outreach", "science literacy",
			"public understanding of science", "science museum", "science culture",
			"comunicació científica", "divulgació científica", "comunicació pública de la ciència",
			"museu de la ciència",
			"comunicação científica", "divulgação científica", "comunicação pública da ciência",
			"museu de ciência",
			"communication scientifique", "vulgarisation scientifique", "culture scientifique",
			"musée de science", "médiation scientifique",
			"comunicazione scientifica", "divulgazione scientifica", "cultura scientifica",
			"museo della scienza",
		},
		model.ScienceDiplomacy: {
			"diplomacia científica", "cooperación internacional científica", "política científica",
			"ciencia global", "relaciones internacionales científicas",
			"science diplomacy", "scientific diplomacy", "international scientific cooperation",
			"global science", "science policy", "international science relations",
			"diplomàcia científica", "cooperació internacional científica",
			"cooperação internacional científica",
			"diplomatie scientifique", "coopération internationale scientifique", "politique scientifique",
			"diplomazia scientifica", "cooperazione internazionale scientifica", "politica scientifica",
		},
	}
}

// DefaultHints returns the built-in sub-page hint keywords.
func DefaultHints() []string {
	return []string{
		"research", "investigación", "investigació", "pesquisa", "recherche", "ricerca",
		"science", "ciencia", "ciència", "ciência", "scienza",
		"open", "abierto", "obert", "aberto", "ouvert", "aperto",
		"communication", "comunicación", "comunicació", "comunicação", "comunicazione",
		"outreach", "divulgación", "divulgació", "divulgação",
		"policy", "política", "politique", "politica",
	}
}

// DefaultInstitutions returns the control institution used by the init template
// and by the keywords command when no survey file is found.
func DefaultInstitutions() []model.Institution {
	return []model.Institution{
		{
			Name:     "Universitat Jaume I",
			URL:      "https://www.uji.es",
			Country:  "España",
			Label:    "control",
			Language: "ca",
		},
	}
}
