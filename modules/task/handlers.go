package task

import (
	"context"

	"github.com/go-monolith/mono"
)

// Request-reply handlers. Domain errors are returned inside the reply
// (see ServiceError), never as the handler error.

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.ListTasks(ctx, req.Filter)
	if err != nil {
		return ListTasksResponse{ServiceError: replyError(err)}, nil
	}
	return ListTasksResponse{Tasks: tasks, Count: len(tasks)}, nil
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.service.CreateTask(ctx, req.Draft)
	if err != nil {
		return TaskReply{ServiceError: replyError(err)}, nil
	}
	return TaskReply{Task: t}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.service.GetTask(ctx, req.TaskID)
	if err != nil {
		return TaskReply{ServiceError: replyError(err)}, nil
	}
	return TaskReply{Task: t}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.service.UpdateTask(ctx, req.TaskID, req.Patch)
	if err != nil {
		return TaskReply{ServiceError: replyError(err)}, nil
	}
	return TaskReply{Task: t}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.DeleteTask(ctx, req.TaskID); err != nil {
		return DeleteTaskResponse{ServiceError: replyError(err)}, nil
	}
	return DeleteTaskResponse{Deleted: true}, nil
}

func (m *TaskModule) taskStats(ctx context.Context, _ StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	stats, err := m.service.Stats(ctx)
	if err != nil {
		return StatsResponse{ServiceError: replyError(err)}, nil
	}
	return StatsResponse{Stats: stats}, nil
}

func (m *TaskModule) listCategories(ctx context.Context, _ CategoriesRequest, _ *mono.Msg) (CategoriesResponse, error) {
	categories, err := m.service.Categories(ctx)
	if err != nil {
		return CategoriesResponse{ServiceError: replyError(err)}, nil
	}
	return CategoriesResponse{Categories: categories}, nil
}
