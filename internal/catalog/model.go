package catalog

// SeedImage is an entry of the master catalog shipped with the binary.
// OriginalID is stable across deployments; the database id is not.
type SeedImage struct {
	OriginalID string `json:"id"`
	Theme      string `json:"theme"`
	URL        string `json:"url"`
}

// SeedResult reports the outcome of a seeding run.
type SeedResult struct {
	Inserted int `json:"inserted"`
	Total    int `json:"totalCatsInDB"`
}
