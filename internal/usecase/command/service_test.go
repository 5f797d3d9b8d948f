package command

import (
	"context"
	"testing"
	"time"

	"song-queue-bot/internal/domain"
)

type stubCommandRepo struct {
	channelCmds map[string]*domain.CommandEntry
	defaults    map[string]*domain.DefaultCommand
	overrides   map[string]*domain.ChannelPermission

	chanPerms map[string]int
	defPerms  map[string]int
	lists     map[string][]string
	counter   int
}

func newStubCommandRepo() *stubCommandRepo {
	return &stubCommandRepo{
		channelCmds: make(map[string]*domain.CommandEntry),
		defaults:    make(map[string]*domain.DefaultCommand),
		overrides:   make(map[string]*domain.ChannelPermission),
		chanPerms:   make(map[string]int),
		defPerms:    make(map[string]int),
		lists:       make(map[string][]string),
	}
}

func (r *stubCommandRepo) GetChannelCommand(_ context.Context, channel, trigger string) (*domain.CommandEntry, error) {
	return r.channelCmds[channel+"|"+trigger], nil
}

func (r *stubCommandRepo) ListChannelCommands(context.Context, string) ([]domain.CommandEntry, error) {
	return nil, nil
}

func (r *stubCommandRepo) AddChannelCommand(_ context.Context, entry domain.CommandEntry) error {
	r.channelCmds[entry.Channel+"|"+entry.Trigger] = &entry
	return nil
}

func (r *stubCommandRepo) UpdateChannelCommandMessage(_ context.Context, channel, trigger, message string) error {
	if e := r.channelCmds[channel+"|"+trigger]; e != nil {
		e.Message = message
	}
	return nil
}

func (r *stubCommandRepo) DeleteChannelCommand(_ context.Context, channel, trigger string) error {
	delete(r.channelCmds, channel+"|"+trigger)
	return nil
}

func (r *stubCommandRepo) SetChannelCommandPermission(_ context.Context, channel, trigger string, level int) error {
	r.chanPerms[channel+"|"+trigger] = level
	return nil
}

func (r *stubCommandRepo) IncrementCounter(context.Context, string, string) (int, error) {
	r.counter++
	return r.counter, nil
}

func (r *stubCommandRepo) UpdateCommandList(_ context.Context, channel, trigger string, list []string) error {
	r.lists[channel+"|"+trigger] = list
	return nil
}

func (r *stubCommandRepo) GetDefaultCommand(_ context.Context, trigger string) (*domain.DefaultCommand, error) {
	return r.defaults[trigger], nil
}

func (r *stubCommandRepo) GetDefaultPermission(_ context.Context, trigger, channel string) (*domain.ChannelPermission, error) {
	return r.overrides[trigger+"|"+channel], nil
}

func (r *stubCommandRepo) SetDefaultPermission(_ context.Context, trigger, channel string, level int) error {
	r.defPerms[trigger+"|"+channel] = level
	return nil
}

type stubPerms struct {
	levels map[string]int
}

func (p *stubPerms) UserLevel(_ context.Context, _, user string) (int, error) {
	return p.levels[user], nil
}

type stubCache struct {
	deleted []string
}

func (c *stubCache) GetValue(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (c *stubCache) SetValue(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (c *stubCache) DelValue(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	return nil
}

type stubSink struct {
	payloads []any
}

func (s *stubSink) Publish(_ context.Context, _ string, _ string, payload any) {
	s.payloads = append(s.payloads, payload)
}

type commandFixture struct {
	svc   *Service
	repo  *stubCommandRepo
	perms *stubPerms
	cache *stubCache
	sink  *stubSink
}

func newCommandFixture() *commandFixture {
	f := &commandFixture{
		repo:  newStubCommandRepo(),
		perms: &stubPerms{levels: make(map[string]int)},
		cache: &stubCache{},
		sink:  &stubSink{},
	}
	f.svc = NewService(f.repo, f.perms, f.cache, f.sink)
	return f
}

func TestAddCommand(t *testing.T) {
	f := newCommandFixture()
	out, err := f.svc.HandleCommandsOp(context.Background(), "chan", "alice", []string{"add", "!hello", "Hi", "there"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "The command !hello has been added!" {
		t.Fatalf("неожиданный ответ: %q", out)
	}
	entry := f.repo.channelCmds["chan|!hello"]
	if entry == nil || entry.Message != "Hi there" {
		t.Fatalf("команда не сохранилась: %+v", entry)
	}
	if len(f.cache.deleted) != 1 {
		t.Fatalf("кэш команд не сброшен")
	}
	if len(f.sink.payloads) != 1 {
		t.Fatalf("событие не опубликовано")
	}

	out, err = f.svc.HandleCommandsOp(context.Background(), "chan", "alice", []string{"add", "!hello", "Again"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "The command !hello already exists!" {
		t.Fatalf("неожиданный ответ: %q", out)
	}
}

func TestAddCommandSyntax(t *testing.T) {
	f := newCommandFixture()
	out, err := f.svc.HandleCommandsOp(context.Background(), "chan", "alice", []string{"add", "hello", "text"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != msgAddSyntax {
		t.Fatalf("без восклицательного знака ожидали подсказку: %q", out)
	}
}

func TestEditAndDeleteCommand(t *testing.T) {
	f := newCommandFixture()
	f.repo.channelCmds["chan|!hello"] = &domain.CommandEntry{Channel: "chan", Trigger: "!hello", Message: "Old"}

	out, err := f.svc.HandleCommandsOp(context.Background(), "chan", "alice", []string{"edit", "!hello", "New", "text"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "The command !hello has been updated!" {
		t.Fatalf("неожиданный ответ: %q", out)
	}
	if f.repo.channelCmds["chan|!hello"].Message != "New text" {
		t.Fatalf("текст команды не обновился")
	}

	out, err = f.svc.HandleCommandsOp(context.Background(), "chan", "alice", []string{"delete", "!hello"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "The command !hello has been deleted!" {
		t.Fatalf("неожиданный ответ: %q", out)
	}
	if f.repo.channelCmds["chan|!hello"] != nil {
		t.Fatalf("команда не удалилась")
	}

	out, err = f.svc.HandleCommandsOp(context.Background(), "chan", "alice", []string{"edit", "!gone", "text"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "The command !gone doesn't exist!" {
		t.Fatalf("неожиданный ответ: %q", out)
	}
}

func TestSetPermissionAboveOwnLevel(t *testing.T) {
	f := newCommandFixture()
	f.perms.levels["mod"] = 2
	f.repo.channelCmds["chan|!hello"] = &domain.CommandEntry{Channel: "chan", Trigger: "!hello"}

	out, err := f.svc.HandleCommandsOp(context.Background(), "chan", "mod", []string{"permission", "!hello", "3"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "Error setting permissions for !hello!" {
		t.Fatalf("нельзя выдать уровень выше своего: %q", out)
	}
}

func TestSetPermissionOnHigherCommand(t *testing.T) {
	f := newCommandFixture()
	f.perms.levels["mod"] = 2
	f.repo.channelCmds["chan|!hello"] = &domain.CommandEntry{Channel: "chan", Trigger: "!hello", PermissionLevel: 3}

	out, err := f.svc.HandleCommandsOp(context.Background(), "chan", "mod", []string{"permission", "!hello", "0"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "Error setting permissions for !hello!" {
		t.Fatalf("нельзя трогать команду с уровнем выше своего: %q", out)
	}
}

func TestSetPermissionChannelCommand(t *testing.T) {
	f := newCommandFixture()
	f.perms.levels["owner"] = 3
	f.repo.channelCmds["chan|!hello"] = &domain.CommandEntry{Channel: "chan", Trigger: "!hello"}

	out, err := f.svc.HandleCommandsOp(context.Background(), "chan", "owner", []string{"permission", "!hello", "2"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "The command !hello permissions have been updated!" {
		t.Fatalf("неожиданный ответ: %q", out)
	}
	if f.repo.chanPerms["chan|!hello"] != 2 {
		t.Fatalf("уровень команды канала не записан")
	}
}

func TestSetPermissionDefaultCommand(t *testing.T) {
	f := newCommandFixture()
	f.perms.levels["owner"] = 3
	f.repo.defaults["!skip"] = &domain.DefaultCommand{Trigger: "!skip", DefaultLevel: 2}

	out, err := f.svc.HandleCommandsOp(context.Background(), "chan", "owner", []string{"permission", "!skip", "3"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "The command !skip permissions have been updated!" {
		t.Fatalf("неожиданный ответ: %q", out)
	}
	if f.repo.defPerms["!skip|chan"] != 3 {
		t.Fatalf("переопределение встроенной команды не записано")
	}
}

func TestRunChannelCommandTemplates(t *testing.T) {
	f := newCommandFixture()
	entry := &domain.CommandEntry{Channel: "chan", Trigger: "!greet", Message: "Hello $(touser), from $(user)"}

	out, err := f.svc.RunChannelCommand(context.Background(), "chan", "alice", "Alice", entry, []string{"@bob"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "Hello bob, from Alice" {
		t.Fatalf("неожиданный ответ: %q", out)
	}

	out, err = f.svc.RunChannelCommand(context.Background(), "chan", "alice", "Alice", entry, nil)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "Hello Alice, from Alice" {
		t.Fatalf("без аргумента адресат — сам вызвавший: %q", out)
	}
}

func TestRunChannelCommandCounter(t *testing.T) {
	f := newCommandFixture()
	entry := &domain.CommandEntry{Channel: "chan", Trigger: "!deaths", Message: "Deaths: $(counter)"}

	out, err := f.svc.RunChannelCommand(context.Background(), "chan", "alice", "Alice", entry, nil)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "Deaths: 1" {
		t.Fatalf("неожиданный ответ: %q", out)
	}
	out, _ = f.svc.RunChannelCommand(context.Background(), "chan", "alice", "Alice", entry, nil)
	if out != "Deaths: 2" {
		t.Fatalf("счётчик не растёт: %q", out)
	}
}

func TestListCommandShow(t *testing.T) {
	f := newCommandFixture()
	f.svc.intn = func(int) int { return 1 }
	entry := &domain.CommandEntry{
		Channel: "chan",
		Trigger: "!quote",
		Message: "Quote: $(list)",
		List:    []string{"first", "second", "third"},
	}

	out, err := f.svc.RunChannelCommand(context.Background(), "chan", "alice", "Alice", entry, nil)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "Quote: second" {
		t.Fatalf("неожиданный ответ: %q", out)
	}

	out, _ = f.svc.RunChannelCommand(context.Background(), "chan", "alice", "Alice", entry, []string{"3"})
	if out != "Quote: third" {
		t.Fatalf("номер элемента не сработал: %q", out)
	}

	out, _ = f.svc.RunChannelCommand(context.Background(), "chan", "alice", "Alice", entry, []string{"9"})
	if out != msgListItemAbsent {
		t.Fatalf("выход за границы списка: %q", out)
	}

	empty := &domain.CommandEntry{Channel: "chan", Trigger: "!quote", Message: "Quote: $(list)"}
	out, _ = f.svc.RunChannelCommand(context.Background(), "chan", "alice", "Alice", empty, nil)
	if out != msgListEmpty {
		t.Fatalf("пустой список: %q", out)
	}
}

func TestListCommandEditRequiresLevel(t *testing.T) {
	f := newCommandFixture()
	f.repo.defaults["!commands"] = &domain.DefaultCommand{Trigger: "!commands", DefaultLevel: 2}
	f.perms.levels["mod"] = 2
	f.perms.levels["viewer"] = 0
	f.svc.intn = func(int) int { return 0 }
	entry := &domain.CommandEntry{
		Channel: "chan",
		Trigger: "!quote",
		Message: "Quote: $(list)",
		List:    []string{"first"},
	}

	out, err := f.svc.RunChannelCommand(context.Background(), "chan", "mod", "Mod", entry, []string{"add", "second"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "The item has been added as #2!" {
		t.Fatalf("неожиданный ответ: %q", out)
	}
	if len(f.repo.lists["chan|!quote"]) != 2 {
		t.Fatalf("список не обновился")
	}

	// Для зрителя подоперация не срабатывает, показывается элемент.
	out, err = f.svc.RunChannelCommand(context.Background(), "chan", "viewer", "Viewer", entry, []string{"add", "third"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "Quote: first" {
		t.Fatalf("зритель не должен править список: %q", out)
	}
}
