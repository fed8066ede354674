package models

// DatasetInfo describes a registered legal dataset hosted on the Hugging Face hub
type DatasetInfo struct {
	Name           string `json:"name"`
	HFDataset      string `json:"hf_dataset"`
	DefaultConfig  string `json:"default_config,omitempty"`
	DefaultSplit   string `json:"default_split"`
	DefaultField   string `json:"default_field"`
	RequiresSubset bool   `json:"requires_subset"`
	AcceptsField   bool   `json:"accepts_field"`
	Description    string `json:"description"`
}

type DatasetSearchParams struct {
	Keyword string `query:"keyword"`
	Limit   *int   `query:"limit"` // nil means the default page size
	Subset  string `query:"subset"`
	Field   string `query:"field"`
}

// DatasetSearchResponse mirrors the {results: [...]} body of the dataset search endpoint
type DatasetSearchResponse struct {
	Results []map[string]interface{} `json:"results"`
}
