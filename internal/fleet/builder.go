package fleet

// RepositoryBuilder assembles RepositoryRecord values fluently.
type RepositoryBuilder struct {
	record RepositoryRecord
}

// NewRepositoryBuilder starts a builder for the named repository.
func NewRepositoryBuilder(name string, url string) *RepositoryBuilder {
	return &RepositoryBuilder{record: NewRepositoryRecord(name, url)}
}

// WithTags appends tags, skipping duplicates.
func (builder *RepositoryBuilder) WithTags(tags ...string) *RepositoryBuilder {
	for _, tag := range tags {
		builder.record.AddTag(tag)
	}
	return builder
}

// WithPath sets the explicit local path.
func (builder *RepositoryBuilder) WithPath(path string) *RepositoryBuilder {
	builder.record.Path = path
	return builder
}

// WithBranch sets the branch used when cloning.
func (builder *RepositoryBuilder) WithBranch(branch string) *RepositoryBuilder {
	builder.record.Branch = branch
	return builder
}

// Build returns a copy of the assembled record.
func (builder *RepositoryBuilder) Build() RepositoryRecord {
	built := builder.record
	built.Tags = append([]string(nil), builder.record.Tags...)
	return built
}
