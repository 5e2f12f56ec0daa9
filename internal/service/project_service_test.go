package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calinbraic/lqa/internal/db"
	"github.com/calinbraic/lqa/internal/domain"
	"github.com/calinbraic/lqa/internal/repository"
	"github.com/calinbraic/lqa/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func newProjectService(database *sql.DB, uow db.UnitOfWork) ProjectService {
	return NewProjectService(
		repository.NewSQLiteProjectRepo(database),
		repository.NewSQLiteCatalogRepo(database),
		repository.NewSQLiteSegmentRepo(database),
		repository.NewSQLiteSegmentIssueRepo(database),
		uow,
	)
}

func createRequest(userID string) UpsertRequest {
	return UpsertRequest{
		Name:         ptr("ACME Manual FR"),
		BitextFile:   &FileUpload{Name: "manual.txt", Data: []byte(testutil.BitextTSV)},
		MetricFile:   &FileUpload{Name: "mqm.xml", Data: []byte(testutil.MetricXML)},
		CallerRole:   domain.RoleAdmin,
		CallerUserID: userID,
	}
}

// createProject creates one project through the service for user alice.
// The caller must have seeded the typology first.
func createProject(t *testing.T, database *sql.DB, svc ProjectService) string {
	t.Helper()
	ctx := context.Background()
	res, err := svc.Upsert(ctx, createRequest("alice"))
	require.NoError(t, err)
	return res.ProjectID
}

func tableCount(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&count))
	return count
}

func TestUpsert_Create(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	res, err := svc.Upsert(ctx, createRequest("alice"))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.NotEmpty(t, res.ProjectID)
	assert.Equal(t, "Project created successfully.", res.Message)

	detail, err := svc.GetDetail(ctx, res.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "ACME Manual FR", detail.Project.Name)
	assert.Equal(t, "manual.txt", detail.Project.BitextFile)
	assert.Equal(t, "mqm.xml", detail.Project.MetricFile)
	assert.Equal(t, 12, detail.Project.SourceWordCount)
	assert.Equal(t, 12, detail.Project.TargetWordCount)
	assert.Equal(t, 1, detail.Project.LastSegment)
	assert.Len(t, detail.Segments, 3)
	assert.Len(t, detail.Issues, 6)

	// the creating user is mapped exactly once
	assert.Equal(t, []string{"alice"}, detail.Users)
	var mappings int
	require.NoError(t, database.QueryRow(
		`SELECT COUNT(*) FROM project_users WHERE project_id = ?`, res.ProjectID).Scan(&mappings))
	assert.Equal(t, 1, mappings)
}

func TestUpsert_Create_HiddenMetricEntry(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)
	detail, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)

	displays := make(map[string]bool, len(detail.Issues))
	for _, pi := range detail.Issues {
		displays[pi.IssueID] = pi.Display
	}
	assert.False(t, displays["spelling"], "display=\"no\" must be preserved")
	assert.True(t, displays["grammar"])
}

func TestUpsert_Create_WithSpecifications(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	req := createRequest("alice")
	req.SpecificationsFile = &FileUpload{Name: "specs.xml", Data: []byte(testutil.SpecificationsXML)}
	res, err := svc.Upsert(ctx, req)
	require.NoError(t, err)

	detail, err := svc.GetDetail(ctx, res.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "specs.xml", detail.Project.SpecificationsFile)
	assert.Equal(t, "Audience: General public\nRegister: Informal", detail.Project.Specifications)
}

func TestUpsert_Update_WithSpecifications(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)

	_, err := svc.Upsert(ctx, UpsertRequest{
		ProjectID: id,
		SpecificationsFile: &FileUpload{Name: "v2.xml", Data: []byte(
			`<specifications><section title="Register">Formal</section></specifications>`)},
		CallerRole:   domain.RoleAdmin,
		CallerUserID: "alice",
	})
	require.NoError(t, err)

	detail, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v2.xml", detail.Project.SpecificationsFile)
	assert.Equal(t, "Register: Formal", detail.Project.Specifications)

	// specifications are not locked by reported issues
	testutil.ReportIssue(t, database, detail.Segments[0].Segment.ID)
	_, err = svc.Upsert(ctx, UpsertRequest{
		ProjectID: id,
		SpecificationsFile: &FileUpload{Name: "v3.xml", Data: []byte(
			`<specifications><section title="Register">Neutral</section></specifications>`)},
		CallerRole:   domain.RoleAdmin,
		CallerUserID: "alice",
	})
	require.NoError(t, err)
}

func TestUpsert_Create_MalformedSpecifications(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))

	req := createRequest("alice")
	req.SpecificationsFile = &FileUpload{Name: "bad.xml", Data: []byte("<specifications>")}
	_, err := svc.Upsert(context.Background(), req)

	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, tableCount(t, database, "projects"))
}

func TestUpsert_Create_MissingRequiredInputs(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	req := createRequest("alice")
	req.MetricFile = nil
	_, err := svc.Upsert(ctx, req)
	require.ErrorIs(t, err, ErrValidation)

	req = createRequest("alice")
	req.Name = ptr("")
	_, err = svc.Upsert(ctx, req)
	require.ErrorIs(t, err, ErrValidation)

	req = createRequest("")
	_, err = svc.Upsert(ctx, req)
	require.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, tableCount(t, database, "projects"))
}

func TestUpsert_Create_TypologyNotImported(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newProjectService(database, testutil.NewTestUoW(database))

	_, err := svc.Upsert(context.Background(), createRequest("alice"))
	require.ErrorIs(t, err, ErrTypologyNotImported)
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestUpsert_Create_MalformedBitext_NoWrites(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))

	req := createRequest("alice")
	req.BitextFile = &FileUpload{Name: "bad.txt", Data: []byte("no tab separator here\n")}
	_, err := svc.Upsert(context.Background(), req)

	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "problem parsing bitext file")

	assert.Zero(t, tableCount(t, database, "projects"))
	assert.Zero(t, tableCount(t, database, "segments"))
}

func TestUpsert_Create_TypologyMismatch_AllOrNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))

	req := createRequest("alice")
	req.MetricFile = &FileUpload{Name: "rogue.xml", Data: []byte(
		`<issues>
			<issue type="accuracy" name="Accuracy">
				<issue type="made-up" name="Made Up"/>
			</issue>
		</issues>`)}
	_, err := svc.Upsert(context.Background(), req)

	var mismatch *TypologyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "made-up", mismatch.IssueID)
	assert.True(t, mismatch.Unknown)
	require.ErrorIs(t, err, ErrValidation)

	// the already-inserted project row was rolled back with the batch
	assert.Zero(t, tableCount(t, database, "projects"))
	assert.Zero(t, tableCount(t, database, "project_users"))
	assert.Zero(t, tableCount(t, database, "project_issues"))
}

func TestUpsert_Create_WrongParent(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))

	req := createRequest("alice")
	req.MetricFile = &FileUpload{Name: "rogue.xml", Data: []byte(
		`<issues>
			<issue type="fluency" name="Fluency">
				<issue type="omission" name="Omission"/>
			</issue>
		</issues>`)}
	_, err := svc.Upsert(context.Background(), req)

	var mismatch *TypologyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "omission", mismatch.IssueID)
	assert.Equal(t, "fluency", mismatch.DeclaredParent)
	assert.Equal(t, "accuracy", mismatch.WantParent)
}

func TestUpsert_Update_Rename(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)

	res, err := svc.Upsert(ctx, UpsertRequest{
		ProjectID:    id,
		Name:         ptr("Renamed"),
		CallerRole:   domain.RoleAdmin,
		CallerUserID: "alice",
	})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "Project updated successfully.", res.Message)

	detail, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", detail.Project.Name)
}

func TestUpsert_Update_NonElevatedNameIgnored(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)

	_, err := svc.Upsert(ctx, UpsertRequest{
		ProjectID:    id,
		Name:         ptr("Hijacked"),
		Finished:     ptr(true),
		CallerRole:   domain.RoleUser,
		CallerUserID: "bob",
	})
	require.NoError(t, err)

	detail, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ACME Manual FR", detail.Project.Name, "rename requires an elevated role")
	assert.True(t, detail.Project.Finished, "progress fields apply regardless of role")
}

func TestUpsert_Update_NonElevatedFilesIgnored(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)

	_, err := svc.Upsert(ctx, UpsertRequest{
		ProjectID:    id,
		BitextFile:   &FileUpload{Name: "other.txt", Data: []byte("one two\tun deux\n")},
		CallerRole:   domain.RoleUser,
		CallerUserID: "bob",
	})
	require.NoError(t, err)

	detail, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "manual.txt", detail.Project.BitextFile)
	assert.Len(t, detail.Segments, 3)
	assert.Equal(t, 12, detail.Project.SourceWordCount)
}

func TestUpsert_Update_BitextReplacesSegmentsWholesale(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)
	before, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	oldIDs := make(map[string]bool)
	for _, sd := range before.Segments {
		oldIDs[sd.Segment.ID] = true
	}

	_, err = svc.Upsert(ctx, UpsertRequest{
		ProjectID:    id,
		BitextFile:   &FileUpload{Name: "v2.txt", Data: []byte("one two three\tun deux\n")},
		CallerRole:   domain.RoleAdmin,
		CallerUserID: "alice",
	})
	require.NoError(t, err)

	after, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	require.Len(t, after.Segments, 1)
	assert.False(t, oldIDs[after.Segments[0].Segment.ID], "segments are replaced, never patched")
	assert.Equal(t, "v2.txt", after.Project.BitextFile)
	assert.Equal(t, 3, after.Project.SourceWordCount)
	assert.Equal(t, 2, after.Project.TargetWordCount)
	assert.Equal(t, 1, after.Project.LastSegment, "review position rewinds with a new bitext")
}

func TestUpsert_Update_MetricReplacesEnabledIssues(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)

	_, err := svc.Upsert(ctx, UpsertRequest{
		ProjectID: id,
		MetricFile: &FileUpload{Name: "narrow.xml", Data: []byte(
			`<issues>
				<issue type="fluency" name="Fluency">
					<issue type="grammar" name="Grammar"/>
				</issue>
			</issues>`)},
		CallerRole:   domain.RoleAdmin,
		CallerUserID: "alice",
	})
	require.NoError(t, err)

	detail, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	require.Len(t, detail.Issues, 2)
	assert.Equal(t, "fluency", detail.Issues[0].IssueID)
	assert.Equal(t, "grammar", detail.Issues[1].IssueID)
	assert.Equal(t, "narrow.xml", detail.Project.MetricFile)
}

func TestUpsert_Update_FilesLockedByReportedIssues(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)
	detail, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	testutil.ReportIssue(t, database, detail.Segments[0].Segment.ID)

	for _, req := range []UpsertRequest{
		{ProjectID: id, BitextFile: &FileUpload{Name: "v2.txt", Data: []byte("a\tb\n")}, CallerRole: domain.RoleAdmin, CallerUserID: "alice"},
		{ProjectID: id, MetricFile: &FileUpload{Name: "v2.xml", Data: []byte(testutil.MetricXML)}, CallerRole: domain.RoleAdmin, CallerUserID: "alice"},
	} {
		_, err := svc.Upsert(ctx, req)
		require.ErrorIs(t, err, ErrFilesLocked)
		require.ErrorIs(t, err, ErrPrecondition)
	}

	// non-file updates stay possible
	_, err = svc.Upsert(ctx, UpsertRequest{
		ProjectID: id, SegmentNum: ptr(2), CallerRole: domain.RoleAdmin, CallerUserID: "alice",
	})
	require.NoError(t, err)
}

func TestUpsert_Update_WordCountsImmutableWithoutBitext(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)
	detail, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	testutil.ReportIssue(t, database, detail.Segments[0].Segment.ID, testutil.WithLevel(domain.SeverityCritical))

	_, err = svc.Upsert(ctx, UpsertRequest{
		ProjectID: id, Finished: ptr(true), CallerRole: domain.RoleAdmin, CallerUserID: "alice",
	})
	require.NoError(t, err)

	after, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 12, after.Project.SourceWordCount, "issue activity never changes word counts")
	assert.Equal(t, 12, after.Project.TargetWordCount)
}

func TestUpsert_Update_UnknownProject(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))

	_, err := svc.Upsert(context.Background(), UpsertRequest{
		ProjectID: "missing", Finished: ptr(true), CallerRole: domain.RoleAdmin, CallerUserID: "alice",
	})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpsert_Create_RollsBackOnStorageFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)

	// the ninth ExecContext of the creation transaction is the segment
	// batch insert: project, user mapping, six project issues, segments
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 9, Err: errors.New("disk full")}
	svc := newProjectService(database, uow)

	_, err := svc.Upsert(context.Background(), createRequest("alice"))
	require.ErrorIs(t, err, ErrStorage)

	assert.Zero(t, tableCount(t, database, "projects"))
	assert.Zero(t, tableCount(t, database, "project_users"))
	assert.Zero(t, tableCount(t, database, "project_issues"))
	assert.Zero(t, tableCount(t, database, "segments"))
}

func TestUpsert_Update_RollsBackOnStorageFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)

	// bitext-only update: segment delete, segment insert, attribute update
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: errors.New("disk full")}
	failing := newProjectService(database, uow)

	_, err := failing.Upsert(ctx, UpsertRequest{
		ProjectID:    id,
		BitextFile:   &FileUpload{Name: "v2.txt", Data: []byte("one two three\tun deux\n")},
		CallerRole:   domain.RoleAdmin,
		CallerUserID: "alice",
	})
	require.ErrorIs(t, err, ErrStorage)

	after, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Len(t, after.Segments, 3, "replaced segments must reappear after rollback")
	assert.Equal(t, "manual.txt", after.Project.BitextFile)
	assert.Equal(t, 12, after.Project.SourceWordCount)
}

func TestUpsert_Update_ReadFailureClassifiedAsStorage(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)
	require.NoError(t, database.Close())

	_, err := svc.Upsert(ctx, UpsertRequest{
		ProjectID: id, Finished: ptr(true), CallerRole: domain.RoleAdmin, CallerUserID: "alice",
	})
	require.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestGetDetail_ReadFailureClassifiedAsStorage(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)
	require.NoError(t, database.Close())

	_, err := svc.GetDetail(ctx, id)
	require.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectService_List(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	_, err := svc.Upsert(ctx, createRequest("alice"))
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, createRequest("bob"))
	require.NoError(t, err)

	all, err := svc.List(ctx, domain.RoleSuperadmin, "whoever")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(ctx, domain.RoleUser, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	admin, err := svc.List(ctx, domain.RoleAdmin, "alice")
	require.NoError(t, err)
	assert.Len(t, admin, 1, "admins still only see assigned projects")
}

func TestProjectService_AssignAndRemoveUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)

	require.NoError(t, svc.AssignUser(ctx, id, "bob"))

	err := svc.AssignUser(ctx, id, "bob")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "already been assigned")

	err = svc.AssignUser(ctx, id, "")
	require.ErrorIs(t, err, ErrValidation)

	err = svc.AssignUser(ctx, "missing", "bob")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, svc.RemoveUser(ctx, id, "bob"))
	detail, err := svc.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, detail.Users)
}

func TestProjectService_Delete(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedTypology(t, database)
	svc := newProjectService(database, testutil.NewTestUoW(database))
	ctx := context.Background()

	id := createProject(t, database, svc)
	require.NoError(t, svc.Delete(ctx, id))

	_, err := svc.GetDetail(ctx, id)
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Zero(t, tableCount(t, database, "segments"))

	err = svc.Delete(ctx, id)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
