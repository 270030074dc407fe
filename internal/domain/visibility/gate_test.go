package visibility_test

import (
	"context"
	"testing"

	mem "health-record-sharing/internal/adapters/storage/memory"
	"health-record-sharing/internal/domain/accessrequests"
	"health-record-sharing/internal/domain/identity"
	"health-record-sharing/internal/domain/visibility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	users    *identity.Service
	requests *accessrequests.Service
	gate     *visibility.Gate

	patient identity.User
	house   identity.User
	grey    identity.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	users := identity.NewService(mem.NewUserRepo())
	requests := accessrequests.NewService(mem.NewAccessRequestRepo(), users, nil, nil)

	patient, err := users.ResolveOrCreate(ctx, identity.ResolveInput{Role: identity.RolePatient, Name: "Ana", Email: "ana@mail.test", HealthCard: "HC1"})
	require.NoError(t, err)
	house, err := users.ResolveOrCreate(ctx, identity.ResolveInput{Role: identity.RoleDoctor, Name: "Dr. House", Email: "house@clinic.test"})
	require.NoError(t, err)
	grey, err := users.ResolveOrCreate(ctx, identity.ResolveInput{Role: identity.RoleDoctor, Name: "Dr. Grey", Email: "grey@clinic.test"})
	require.NoError(t, err)

	return fixture{
		users:    users,
		requests: requests,
		gate:     visibility.NewGate(requests, users),
		patient:  patient,
		house:    house,
		grey:     grey,
	}
}

func (f fixture) request(t *testing.T, doctor identity.User) accessrequests.AccessRequest {
	t.Helper()
	ar, err := f.requests.Create(context.Background(), accessrequests.CreateInput{DoctorID: doctor.ID, PatientHealthCard: "HC1"})
	require.NoError(t, err)
	return ar
}

func TestCanView_ForbiddenWithoutApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.gate.CanView(ctx, f.house.ID, "HC1")
	assert.ErrorIs(t, err, visibility.ErrForbidden)
	assert.False(t, d.Allowed)
	assert.Equal(t, visibility.ReasonNoApprovedAccess, d.Reason)

	// un pedido pending no alcanza
	f.request(t, f.house)
	_, err = f.gate.CanView(ctx, f.house.ID, "HC1")
	assert.ErrorIs(t, err, visibility.ErrForbidden)
}

func TestCanView_AllowedAfterApprovalAndStaysAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ar := f.request(t, f.house)
	permanent := accessrequests.AccessPermanent
	noDownload := accessrequests.Permissions{View: true, Download: false}
	_, err := f.requests.Respond(ctx, ar.ID, accessrequests.RespondInput{Approve: true, AccessType: &permanent, Permissions: &noDownload})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		d, err := f.gate.CanView(ctx, f.house.ID, " HC1 ")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, f.patient.ID, d.Patient.ID)
	}

	// la aprobación es por par (médico, paciente)
	_, err = f.gate.CanView(ctx, f.grey.ID, "HC1")
	assert.ErrorIs(t, err, visibility.ErrForbidden)
}

func TestCanView_DenialKeepsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ar := f.request(t, f.house)
	_, err := f.requests.Respond(ctx, ar.ID, accessrequests.RespondInput{Approve: false})
	require.NoError(t, err)

	_, err = f.requests.Respond(ctx, ar.ID, accessrequests.RespondInput{Approve: true})
	require.ErrorIs(t, err, accessrequests.ErrAlreadyDecided)

	_, err = f.gate.CanView(ctx, f.house.ID, "HC1")
	assert.ErrorIs(t, err, visibility.ErrForbidden)
}

func TestCanView_UnknownParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gate.CanView(ctx, "ghost", "HC1")
	assert.ErrorIs(t, err, visibility.ErrDoctorNotFound)
	assert.ErrorIs(t, err, visibility.ErrNotFound)

	// un paciente no es médico
	_, err = f.gate.CanView(ctx, f.patient.ID, "HC1")
	assert.ErrorIs(t, err, visibility.ErrDoctorNotFound)

	_, err = f.gate.CanView(ctx, f.house.ID, "HC404")
	assert.ErrorIs(t, err, visibility.ErrPatientNotFound)
}

func TestSharingSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.gate.SharingSummary(ctx, f.patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Only you can view this.", s)

	for _, doctor := range []identity.User{f.house, f.house, f.grey} {
		ar := f.request(t, doctor)
		_, err := f.requests.Respond(ctx, ar.ID, accessrequests.RespondInput{Approve: true})
		require.NoError(t, err)
	}
	denied := f.request(t, f.grey)
	_, err = f.requests.Respond(ctx, denied.ID, accessrequests.RespondInput{Approve: false})
	require.NoError(t, err)

	s, err = f.gate.SharingSummary(ctx, f.patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shared with Dr. House, Dr. Grey", s)
}
