package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"sticky-notes-api/internal/domain"
	"sticky-notes-api/internal/media"
	"sticky-notes-api/internal/repo"
	"sticky-notes-api/internal/service"
)

func newUserService(t *testing.T, store media.Store) (*service.UserService, domain.UserRepository) {
	t.Helper()
	db := openTestDB(t)
	users := repo.NewUserRepo(db)
	return service.NewUserService(users, testJWTer(), store), users
}

func TestRegister(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if u.PasswordHash == "secret123" || u.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if u.AvatarURL != domain.DefaultAvatarURL {
		t.Fatalf("expected default avatar, got %q", u.AvatarURL)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "a@b.co", "pw"); err == nil {
		t.Fatal("expected error for empty name")
	} else {
		wantCode(t, err, http.StatusBadRequest)
	}
	_, err := svc.Register(ctx, "Bob", "not-an-email", "pw")
	wantCode(t, err, http.StatusBadRequest)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "pw1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, "Alice Two", "alice@example.com", "pw2")
	e := wantCode(t, err, http.StatusConflict)
	if e.Msg != "User with this email already exists" {
		t.Fatalf("unexpected message: %q", e.Msg)
	}
}

func TestLoginUniformFailureMessage(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "correct"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// 未知邮箱和密码错误必须给出同一句话
	_, _, errUnknown := svc.Login(ctx, "nobody@example.com", "whatever")
	eUnknown := wantCode(t, errUnknown, http.StatusUnauthorized)

	_, _, errWrongPw := svc.Login(ctx, "alice@example.com", "wrong")
	eWrongPw := wantCode(t, errWrongPw, http.StatusUnauthorized)

	if eUnknown.Msg != eWrongPw.Msg {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", eUnknown.Msg, eWrongPw.Msg)
	}
	if eUnknown.Msg != "Invalid email or password" {
		t.Fatalf("unexpected message: %q", eUnknown.Msg)
	}
}

func TestLoginPersistsRefreshToken(t *testing.T) {
	svc, users := newUserService(t, nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Alice", "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(ctx, "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	stored, err := users.FindByID(ctx, reg.ID)
	if err != nil || stored == nil {
		t.Fatalf("find user: %v", err)
	}
	if stored.RefreshToken != pair.RefreshToken {
		t.Fatal("refresh token must be persisted on the user record")
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "correct"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, first, err := svc.Login(ctx, "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	u, second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh must rotate the stored token")
	}

	// 旧 token 已被轮换覆盖，再用必须拒绝
	_, _, err = svc.Refresh(ctx, first.RefreshToken)
	wantCode(t, err, http.StatusUnauthorized)
}

func TestRefreshMissingToken(t *testing.T) {
	svc, _ := newUserService(t, nil)
	_, _, err := svc.Refresh(context.Background(), "")
	e := wantCode(t, err, http.StatusUnauthorized)
	if e.Msg != "Refresh token missing. Please login again" {
		t.Fatalf("unexpected message: %q", e.Msg)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(ctx, "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, u.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	wantCode(t, err, http.StatusUnauthorized)

	// 幂等：用户不存在也按成功
	if err := svc.Logout(ctx, "no-such-user"); err != nil {
		t.Fatalf("logout unknown user: %v", err)
	}
}

func TestGetUser(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := svc.Get(ctx, u.ID)
	if err != nil || got.Email != "alice@example.com" {
		t.Fatalf("Get: %v %+v", err, got)
	}
	_, err = svc.Get(ctx, "missing")
	wantCode(t, err, http.StatusNotFound)
}

// fakeMedia 记录调用顺序，可注入上传失败
type fakeMedia struct {
	calls     []string
	uploadErr error
}

func (f *fakeMedia) Upload(_ context.Context, filePath string) (media.Asset, error) {
	f.calls = append(f.calls, "upload:"+filePath)
	if f.uploadErr != nil {
		return media.Asset{}, f.uploadErr
	}
	return media.Asset{URL: "https://cdn.example.com/new.png", PublicID: "avatars/new"}, nil
}

func (f *fakeMedia) Delete(_ context.Context, publicID string) error {
	f.calls = append(f.calls, "delete:"+publicID)
	return nil
}

func strp(s string) *string { return &s }

func TestUpdateProfileFields(t *testing.T) {
	svc, users := newUserService(t, nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.UpdateProfile(ctx, u.ID, domain.UserPatch{Name: strp("  Alice B  ")}, "")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Name != "Alice B" {
		t.Fatalf("expected trimmed name, got %q", got.Name)
	}

	stored, _ := users.FindByID(ctx, u.ID)
	if stored.Name != "Alice B" || stored.Email != "alice@example.com" {
		t.Fatalf("unexpected stored user: %+v", stored)
	}
}

func TestUpdateProfileEmptyPatch(t *testing.T) {
	svc, _ := newUserService(t, nil)
	_, err := svc.UpdateProfile(context.Background(), "any", domain.UserPatch{}, "")
	e := wantCode(t, err, http.StatusBadRequest)
	if e.Msg != "No data or file provided for update" {
		t.Fatalf("unexpected message: %q", e.Msg)
	}
}

func TestUpdateProfileAvatarReplacesOld(t *testing.T) {
	fm := &fakeMedia{}
	svc, users := newUserService(t, fm)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	u.AvatarPublicID = "avatars/old"
	if err := users.Update(ctx, u); err != nil {
		t.Fatalf("seed public id: %v", err)
	}

	got, err := svc.UpdateProfile(ctx, u.ID, domain.UserPatch{}, "/tmp/staged.png")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.AvatarURL != "https://cdn.example.com/new.png" || got.AvatarPublicID != "avatars/new" {
		t.Fatalf("avatar not replaced: %+v", got)
	}
	// 先删旧再传新
	if len(fm.calls) != 2 || fm.calls[0] != "delete:avatars/old" || fm.calls[1] != "upload:/tmp/staged.png" {
		t.Fatalf("unexpected media call order: %v", fm.calls)
	}
}

func TestUpdateProfileUploadFailureLeavesUserUntouched(t *testing.T) {
	fm := &fakeMedia{uploadErr: errors.New("upstream down")}
	svc, users := newUserService(t, fm)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = svc.UpdateProfile(ctx, u.ID, domain.UserPatch{Name: strp("New Name")}, "/tmp/staged.png")
	if err == nil {
		t.Fatal("expected upload error to propagate")
	}

	stored, _ := users.FindByID(ctx, u.ID)
	if stored.Name != "Alice" || stored.AvatarURL != domain.DefaultAvatarURL {
		t.Fatalf("user must not be partially updated: %+v", stored)
	}
}

func TestUpdateProfileAvatarWithoutMediaHost(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err = svc.UpdateProfile(ctx, u.ID, domain.UserPatch{}, "/tmp/staged.png")
	wantCode(t, err, http.StatusInternalServerError)
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	bob, err := svc.Register(ctx, "Bob", "bob@example.com", "pw")
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	_, err = svc.UpdateProfile(ctx, bob.ID, domain.UserPatch{Email: strp("alice@example.com")}, "")
	wantCode(t, err, http.StatusConflict)
}
